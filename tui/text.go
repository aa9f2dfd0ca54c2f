package tui

import "helpsync/types"

// UI Text Constants
const (
	TextTitle    = "🔄 Help Center Sync"
	TextIdleHint = "Press 'f' to fetch help-center articles"

	// Footer
	TextFooterIdle    = "f fetch | c compare | u upload new | x delete orphaned | q quit"
	TextFooterRunning = "Operation running... | q quit (server keeps running)"
	TextConfirmDelete = "Delete %d orphaned articles from %s? This cannot be undone. (y/n)"
)

// stateText is the state line per server state; the error text takes the message
var stateText = map[types.State]string{
	types.StateIdle:        "👋 Ready",
	types.StateFetching:    "⏳ Fetching help-center articles...",
	types.StateClassifying: "🔍 Classifying articles...",
	types.StateComparing:   "📥 Fetching knowledge base and comparing...",
	types.StateUploading:   "📤 Uploading new articles...",
	types.StateDeleting:    "🗑️  Deleting orphaned articles...",
	types.StateComplete:    "✅ COMPLETE",
	types.StateError:       "❌ Error: %s",
}
