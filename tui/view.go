package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n\n")

	// Current state
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	if s := m.Status; s != nil && m.Connected {
		// Statistics
		if s.SourceCount > 0 {
			stats := fmt.Sprintf("📊 Source articles: %d | Production: %d | Excluded: %d",
				s.SourceCount, s.ProductionCount, s.ExcludedCount)
			b.WriteString(InfoStyle.Render(stats))
			b.WriteString("\n")
		}
		if s.KnowledgeSourceID != "" {
			stats := fmt.Sprintf("   %s: Existing: %d | New: %d | Orphaned: %d",
				s.KnowledgeSourceID, s.ExistingCount, s.NewCount, s.OrphanedCount)
			b.WriteString(InfoStyle.Render(stats))
			b.WriteString("\n")
		}
		if s.Truncated {
			b.WriteString(WarningStyle.Render("⚠️  Knowledge base listing was truncated"))
			b.WriteString("\n")
		}

		// Progress
		if bar := progressBar(s.Progress, 30); bar != "" && s.State.Busy() {
			b.WriteString("\n")
			b.WriteString(StatusStyle.Render(bar))
			b.WriteString("\n")
			if s.Progress.Detail != "" {
				b.WriteString(InfoStyle.Render("   " + s.Progress.Detail))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")

		// Logs
		if len(s.Logs) > 0 {
			b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
			b.WriteString("\n")
			logs := s.Logs
			if len(logs) > maxLogLines {
				logs = logs[len(logs)-maxLogLines:]
			}
			for _, entry := range logs {
				line := fmt.Sprintf("   %s %s", entry.Timestamp.Format("15:04:05"), entry.Message)
				b.WriteString(InfoStyle.Render(line))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		// Results
		if s.LastReport != nil && !s.State.Busy() {
			b.WriteString(BoxStyle.Render(formatReport(s.LastReport)))
			b.WriteString("\n\n")
		}
	}

	if m.Confirming && m.Status != nil {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(TextConfirmDelete, m.Status.OrphanedCount, m.Status.KnowledgeSourceID)))
		b.WriteString("\n\n")
	}

	if m.Notice != "" {
		b.WriteString(InfoStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	// Help text
	if m.state().Busy() {
		b.WriteString(InfoStyle.Render(TextFooterRunning))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterIdle))
	}

	return b.String()
}
