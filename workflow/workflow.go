package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"helpsync/ada"
	"helpsync/calllog"
	"helpsync/classifier"
	"helpsync/config"
	"helpsync/grabfeed"
	"helpsync/metrics"
	"helpsync/reconcile"
	"helpsync/state"
	"helpsync/syncer"
	"helpsync/types"
)

// ErrNoComparison is returned by bulk operations before any comparison ran
var ErrNoComparison = errors.New("no comparison available, run compare first")

// SourceFetcher downloads raw help-center articles
type SourceFetcher interface {
	Fetch(ctx context.Context, userType, locale string) ([]types.RawSourceArticle, error)
}

// ArticleFetcher lists every article of a knowledge source
type ArticleFetcher interface {
	FetchAll(ctx context.Context, knowledgeSourceID string, onProgress ada.ProgressFunc) (*ada.FetchResult, error)
}

// ReportSink receives the report of every bulk operation
type ReportSink interface {
	Save(ctx context.Context, report types.SyncReport) error
}

// ComparisonArchiver stores comparison snapshots
type ComparisonArchiver interface {
	SaveComparison(ctx context.Context, runID string, c types.ComparisonResult) (string, error)
}

// Deps are the collaborators of a Runner. Nil normalizer and classifier get defaults.
type Deps struct {
	Source      SourceFetcher
	Normalizer  *grabfeed.Normalizer
	Classifier  *classifier.Classifier
	Articles    ArticleFetcher
	Destination syncer.Destination
	Sinks       []ReportSink
	Comparisons ComparisonArchiver
	Logger      ada.Logger
}

// Runner executes the sync workflow against one session
type Runner struct {
	stateManager *state.Manager
	settings     *config.Settings

	source      SourceFetcher
	normalizer  *grabfeed.Normalizer
	classifier  *classifier.Classifier
	articles    ArticleFetcher
	driver      *syncer.Driver
	sinks       []ReportSink
	comparisons ComparisonArchiver
	logger      ada.Logger

	newRunID func() string
}

// NewRunner creates a new workflow runner
func NewRunner(stateManager *state.Manager, settings *config.Settings, deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = grabfeed.NewNormalizer(nil)
	}
	cls := deps.Classifier
	if cls == nil {
		cls = classifier.New(grabfeed.NewHTMLCleaner())
	}

	return &Runner{
		stateManager: stateManager,
		settings:     settings,
		source:       deps.Source,
		normalizer:   normalizer,
		classifier:   cls,
		articles:     deps.Articles,
		driver:       syncer.NewDriver(deps.Destination, settings.Sync.ItemDelay, logger),
		sinks:        deps.Sinks,
		comparisons:  deps.Comparisons,
		logger:       logger,
		newRunID:     func() string { return uuid.New().String() },
	}
}

// NewRunnerFromSettings wires the HTTP clients described by settings.
// Every remote call is recorded to sink. The returned ada client also serves
// knowledge source management.
func NewRunnerFromSettings(stateManager *state.Manager, settings *config.Settings, sink calllog.Sink, sinks ...ReportSink) (*Runner, *ada.Client) {
	adaClient := ada.NewClient(settings.Ada.AdaBaseURL(), settings.Ada.APIKey, settings.Ada.Timeout, sink)
	fetcher := ada.NewFetcher(adaClient,
		ada.WithMaxPages(settings.Sync.MaxPages),
		ada.WithPageDelay(settings.Sync.PageDelay),
	)

	runner := NewRunner(stateManager, settings, Deps{
		Source:      grabfeed.NewFetcher(settings.Source.URL, settings.Source.Timeout, sink),
		Articles:    fetcher,
		Destination: adaClient,
		Sinks:       sinks,
	})
	return runner, adaClient
}

// WithComparisonArchive stores every comparison through a
func (r *Runner) WithComparisonArchive(a ComparisonArchiver) *Runner {
	r.comparisons = a
	return r
}

// State returns the session the runner writes to
func (r *Runner) State() *state.Manager {
	return r.stateManager
}

// FetchSource downloads, normalizes and classifies the help-center articles
func (r *Runner) FetchSource(ctx context.Context) error {
	if err := r.stateManager.TryBegin(types.StateFetching); err != nil {
		return err
	}
	return r.runFetch(ctx)
}

// Compare fetches the knowledge source and partitions it against the source snapshot.
// The source is fetched first when no snapshot exists yet.
func (r *Runner) Compare(ctx context.Context, knowledgeSourceID string) error {
	if err := r.stateManager.TryBegin(types.StateComparing); err != nil {
		return err
	}
	return r.runCompare(ctx, knowledgeSourceID)
}

// UploadNew creates the new articles of the latest comparison; ids selects a subset
func (r *Runner) UploadNew(ctx context.Context, ids []string) (*types.SyncReport, error) {
	if err := r.stateManager.TryBegin(types.StateUploading); err != nil {
		return nil, err
	}
	return r.runUpload(ctx, ids)
}

// DeleteOrphaned deletes the orphaned articles of the latest comparison; ids
// selects a subset and an empty list means every orphan. Callers confirm first.
func (r *Runner) DeleteOrphaned(ctx context.Context, ids []string) (*types.SyncReport, error) {
	if err := r.stateManager.TryBegin(types.StateDeleting); err != nil {
		return nil, err
	}
	return r.runDelete(ctx, ids)
}

// Run fetches and compares, then uploads new articles when auto upload is on.
// It never deletes.
// This is called by manual trigger, Kafka request or cron job
func (r *Runner) Run(ctx context.Context) error {
	if err := r.stateManager.TryBegin(types.StateFetching); err != nil {
		return err
	}
	return r.runWorkflow(ctx)
}

// The run* methods expect the session to be claimed with TryBegin already.

func (r *Runner) runFetch(ctx context.Context) error {
	if err := r.fetchSource(ctx); err != nil {
		return r.fail("fetch source", err)
	}
	r.stateManager.SetState(types.StateComplete)
	return nil
}

func (r *Runner) runCompare(ctx context.Context, knowledgeSourceID string) error {
	if err := r.compare(ctx, knowledgeSourceID); err != nil {
		return r.fail("compare", err)
	}
	r.stateManager.SetState(types.StateComplete)
	return nil
}

func (r *Runner) runUpload(ctx context.Context, ids []string) (*types.SyncReport, error) {
	report, err := r.upload(ctx, ids)
	if err != nil {
		return nil, r.fail("upload", err)
	}
	r.stateManager.SetState(types.StateComplete)
	return report, nil
}

func (r *Runner) runDelete(ctx context.Context, ids []string) (*types.SyncReport, error) {
	report, err := r.delete(ctx, ids)
	if err != nil {
		return nil, r.fail("delete", err)
	}
	r.stateManager.SetState(types.StateComplete)
	return report, nil
}

func (r *Runner) runWorkflow(ctx context.Context) error {
	// Step 1: Fetch source articles
	if err := r.fetchSource(ctx); err != nil {
		return r.fail("fetch source", err)
	}

	// Step 2: Compare with the knowledge base
	if err := r.compare(ctx, ""); err != nil {
		return r.fail("compare", err)
	}

	// Step 3: Upload new articles
	if r.settings.Sync.AutoUpload {
		if _, err := r.upload(ctx, nil); err != nil {
			return r.fail("upload", err)
		}
	}

	r.stateManager.SetState(types.StateComplete)
	r.stateManager.AddLog("Workflow completed")
	return nil
}

func (r *Runner) fetchSource(ctx context.Context) error {
	if err := r.settings.ValidateSource(); err != nil {
		return err
	}

	userType, locale := r.settings.Source.UserType, r.settings.Source.Locale
	r.stateManager.SetState(types.StateFetching)
	r.stateManager.AddLog(fmt.Sprintf("Fetching help-center articles (%s/%s)...", userType, locale))

	raws, err := r.source.Fetch(ctx, userType, locale)
	if err != nil {
		return err
	}
	r.stateManager.AddLog(fmt.Sprintf("Fetched %d articles", len(raws)))

	r.stateManager.SetState(types.StateClassifying)
	articles := r.normalizer.NormalizeAll(raws)
	production, excluded := r.classifier.Filter(articles)

	for _, ex := range excluded {
		r.logger.Printf("Article %s excluded: %v", ex.Article.ID, ex.Classification.Reasons)
	}

	r.stateManager.SetSource(len(articles), production, excluded)
	metrics.RecordExcluded(len(excluded))
	r.stateManager.AddLog(fmt.Sprintf("Classified %d production, %d excluded", len(production), len(excluded)))
	return nil
}

func (r *Runner) compare(ctx context.Context, knowledgeSourceID string) error {
	if err := r.settings.ValidateAda(); err != nil {
		return err
	}
	ks, err := r.settings.ResolveKnowledgeSource(knowledgeSourceID)
	if err != nil {
		return err
	}

	if !r.stateManager.HasSource() {
		if err := r.fetchSource(ctx); err != nil {
			return err
		}
	}

	r.stateManager.SetState(types.StateComparing)
	r.stateManager.AddLog(fmt.Sprintf("Fetching knowledge source %s...", ks))

	fetched, err := r.articles.FetchAll(ctx, ks, func(current, total int, detail string) {
		r.stateManager.SetProgress(types.Progress{Current: current, Total: total, Detail: detail})
	})
	if err != nil {
		return err
	}
	if fetched.Truncated {
		r.stateManager.AddLog(fmt.Sprintf("Warning: stopped after %d pages, results are truncated", fetched.Pages))
	}

	result := reconcile.CompareWithPrefix(r.stateManager.Production(), fetched.Articles, r.settings.Sync.IDPrefix)
	result.KnowledgeSourceID = ks
	result.PagesFetched = fetched.Pages
	result.Truncated = fetched.Truncated

	r.stateManager.SetComparison(result)
	metrics.RecordComparison(result)
	r.stateManager.AddLog(fmt.Sprintf("Comparison: %d existing, %d new, %d orphaned (%d pages)",
		len(result.Existing), len(result.New), len(result.Orphaned), result.PagesFetched))

	if r.comparisons != nil {
		key, err := r.comparisons.SaveComparison(ctx, r.newRunID(), result)
		if err != nil {
			r.logger.Printf("⚠️  Failed to archive comparison: %v", err)
		} else {
			r.logger.Printf("Comparison archived to %s", key)
		}
	}
	return nil
}

func (r *Runner) upload(ctx context.Context, ids []string) (*types.SyncReport, error) {
	if err := r.settings.ValidateAda(); err != nil {
		return nil, err
	}
	comparison := r.stateManager.Comparison()
	if comparison == nil {
		return nil, ErrNoComparison
	}

	r.stateManager.SetState(types.StateUploading)
	selected := reconcile.SelectNew(*comparison, ids)
	r.stateManager.AddLog(fmt.Sprintf("Uploading %d articles to %s...", len(selected), comparison.KnowledgeSourceID))

	report := r.driver.CreateAll(ctx, selected, r.options(comparison.KnowledgeSourceID))
	r.finish(ctx, report)
	return &report, nil
}

func (r *Runner) delete(ctx context.Context, ids []string) (*types.SyncReport, error) {
	if err := r.settings.ValidateAda(); err != nil {
		return nil, err
	}
	comparison := r.stateManager.Comparison()
	if comparison == nil {
		return nil, ErrNoComparison
	}

	r.stateManager.SetState(types.StateDeleting)
	selected := reconcile.SelectOrphaned(*comparison, ids)
	r.stateManager.AddLog(fmt.Sprintf("Deleting %d orphaned articles from %s...", len(selected), comparison.KnowledgeSourceID))

	report := r.driver.DeleteAll(ctx, selected, r.options(comparison.KnowledgeSourceID))
	r.finish(ctx, report)
	return &report, nil
}

func (r *Runner) options(knowledgeSourceID string) syncer.Options {
	return syncer.Options{
		RunID:      r.newRunID(),
		Payload:    ada.PayloadOptionsFromSettings(r.settings, knowledgeSourceID),
		OnProgress: r.stateManager.SetProgress,
	}
}

// finish records the report and hands it to every sink; sink errors are only logged
func (r *Runner) finish(ctx context.Context, report types.SyncReport) {
	r.stateManager.SetReport(report)
	r.stateManager.AddLog(fmt.Sprintf("%s finished: %d succeeded, %d failed (%.1f%%)",
		report.Operation, report.SuccessCount, report.FailureCount, report.SuccessRate()))

	for _, sink := range r.sinks {
		if err := sink.Save(ctx, report); err != nil {
			r.logger.Printf("⚠️  Failed to save report %s: %v", report.RunID, err)
		}
	}
}

func (r *Runner) fail(step string, err error) error {
	wrapped := fmt.Errorf("%s: %w", step, err)
	r.stateManager.SetError(wrapped)
	return wrapped
}
