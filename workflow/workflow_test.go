package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpsync/ada"
	"helpsync/client"
	"helpsync/config"
	"helpsync/state"
	"helpsync/types"
)

// recordingLogger keeps every formatted line
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type fakeSource struct {
	articles []types.RawSourceArticle
	err      error
}

func (f *fakeSource) Fetch(context.Context, string, string) ([]types.RawSourceArticle, error) {
	return f.articles, f.err
}

type fakeArticles struct {
	result *ada.FetchResult
	err    error
	calls  int
	// gate holds FetchAll until it is closed
	gate chan struct{}
}

func (f *fakeArticles) FetchAll(_ context.Context, _ string, onProgress ada.ProgressFunc) (*ada.FetchResult, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		onProgress(1, 1, "page 1")
	}
	return f.result, nil
}

type fakeDestination struct {
	mu      sync.Mutex
	created []string
	deleted []string
	failIDs map[string]bool
}

func (f *fakeDestination) CreateArticles(_ context.Context, payloads []types.DestinationPayload, _ string) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := payloads[0].ID
	if f.failIDs[id] {
		return &client.Response{StatusCode: http.StatusInternalServerError, Body: []byte(`{"error":"boom"}`)}, nil
	}
	f.created = append(f.created, id)
	return &client.Response{StatusCode: http.StatusCreated}, nil
}

func (f *fakeDestination) DeleteArticle(_ context.Context, id, _ string) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return &client.Response{StatusCode: http.StatusNoContent}, nil
}

type recordingSink struct {
	reports []types.SyncReport
	err     error
}

func (s *recordingSink) Save(_ context.Context, r types.SyncReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

func testSettings() *config.Settings {
	return &config.Settings{
		Ada:    config.AdaConfig{InstanceName: "grab", APIKey: "key", KnowledgeSourceID: "ks-default"},
		Source: config.SourceConfig{URL: "http://source/{user_type}/{locale}", UserType: "passenger", Locale: "en-sg"},
	}
}

func sourceArticles() []types.RawSourceArticle {
	return []types.RawSourceArticle{
		{ID: "101", Name: "Paying with cards", Body: "<p>How to pay with your card in the app safely.</p>"},
		{ID: "102", Name: "Updating your profile", Body: "<p>Open the account page and edit your profile details.</p>"},
		{ID: "103", Name: "Cancelling rides", Body: "<p>You can cancel a booking before the driver arrives.</p>"},
		{ID: "104", Name: "Test article", Body: "<p>Ignore this page, it only checks the pipeline.</p>"},
	}
}

type fixture struct {
	runner   *Runner
	state    *state.Manager
	source   *fakeSource
	articles *fakeArticles
	dest     *fakeDestination
	sink     *recordingSink
	logger   *recordingLogger
}

func newFixture(t *testing.T, settings *config.Settings) *fixture {
	t.Helper()
	f := &fixture{
		state:  state.NewManager(),
		source: &fakeSource{articles: sourceArticles()},
		articles: &fakeArticles{result: &ada.FetchResult{
			Articles: []types.DestinationArticle{{ID: "101", Name: "Paying with cards"}, {ID: "900", Name: "Retired"}},
			Pages:    2,
		}},
		dest:   &fakeDestination{failIDs: map[string]bool{}},
		sink:   &recordingSink{},
		logger: &recordingLogger{},
	}
	f.runner = NewRunner(f.state, settings, Deps{
		Source:      f.source,
		Articles:    f.articles,
		Destination: f.dest,
		Sinks:       []ReportSink{f.sink},
		Logger:      f.logger,
	})
	return f
}

func TestFetchSourceClassifies(t *testing.T) {
	f := newFixture(t, testSettings())

	require.NoError(t, f.runner.FetchSource(context.Background()))

	snap := f.state.Snapshot()
	assert.Equal(t, types.StateComplete, snap.State)
	assert.Equal(t, 4, snap.SourceCount)
	assert.Equal(t, 3, snap.ProductionCount)
	assert.Equal(t, 1, snap.ExcludedCount)
	assert.Equal(t, "104", f.state.Excluded()[0].Article.ID)
}

func TestCompareFetchesSourceWhenMissing(t *testing.T) {
	f := newFixture(t, testSettings())

	require.NoError(t, f.runner.Compare(context.Background(), ""))

	c := f.state.Comparison()
	require.NotNil(t, c)
	assert.Equal(t, "ks-default", c.KnowledgeSourceID)
	assert.Equal(t, 2, c.PagesFetched)
	assert.Len(t, c.Existing, 1)
	assert.Len(t, c.New, 2)
	require.Len(t, c.Orphaned, 1)
	assert.Equal(t, "900", c.Orphaned[0].ID.String())
	assert.Equal(t, types.StateComplete, f.state.GetState())
}

func TestCompareRequiresCredentials(t *testing.T) {
	settings := testSettings()
	settings.Ada.APIKey = ""
	f := newFixture(t, settings)

	err := f.runner.Compare(context.Background(), "")
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	assert.Equal(t, types.StateError, f.state.GetState())
	assert.Zero(t, f.articles.calls)
}

func TestCompareFailureKeepsNoComparison(t *testing.T) {
	f := newFixture(t, testSettings())
	f.articles.err = errors.New("failed to fetch page 2: API returned 401")

	err := f.runner.Compare(context.Background(), "ks1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compare:")
	assert.Nil(t, f.state.Comparison())
	assert.Contains(t, f.state.Snapshot().Error, "401")
}

func TestUploadNewReportsEveryItem(t *testing.T) {
	f := newFixture(t, testSettings())
	f.dest.failIDs["103"] = true
	ctx := context.Background()

	require.NoError(t, f.runner.Compare(ctx, "ks1"))
	report, err := f.runner.UploadNew(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, types.OperationCreate, report.Operation)
	assert.Equal(t, "ks1", report.KnowledgeSourceID)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, []string{"102"}, f.dest.created)

	require.Len(t, f.sink.reports, 1)
	assert.Equal(t, report.RunID, f.sink.reports[0].RunID)
	assert.NotNil(t, f.state.Snapshot().LastReport)
}

func TestUploadSubset(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()

	require.NoError(t, f.runner.Compare(ctx, "ks1"))
	report, err := f.runner.UploadNew(ctx, []string{"103"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total())
	assert.Equal(t, []string{"103"}, f.dest.created)
}

func TestUploadWithoutComparison(t *testing.T) {
	f := newFixture(t, testSettings())

	_, err := f.runner.UploadNew(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoComparison)
	assert.Equal(t, types.StateError, f.state.GetState())
}

func TestDeleteOrphanedDefaultsToAll(t *testing.T) {
	f := newFixture(t, testSettings())
	ctx := context.Background()

	require.NoError(t, f.runner.Compare(ctx, "ks1"))
	report, err := f.runner.DeleteOrphaned(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, types.OperationDelete, report.Operation)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, []string{"900"}, f.dest.deleted)
}

func TestSinkErrorsAreNotPropagated(t *testing.T) {
	f := newFixture(t, testSettings())
	f.sink.err = errors.New("redis down")
	ctx := context.Background()

	require.NoError(t, f.runner.Compare(ctx, "ks1"))
	_, err := f.runner.DeleteOrphaned(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, types.StateComplete, f.state.GetState())

	var logged bool
	for _, line := range f.logger.Lines() {
		if strings.Contains(line, "Failed to save report") && strings.Contains(line, "redis down") {
			logged = true
		}
	}
	assert.True(t, logged, "sink failure goes to the injected logger")
}

func TestRunUploadsOnlyWhenEnabled(t *testing.T) {
	f := newFixture(t, testSettings())
	require.NoError(t, f.runner.Run(context.Background()))
	assert.Empty(t, f.dest.created)
	assert.Empty(t, f.dest.deleted)

	settings := testSettings()
	settings.Sync.AutoUpload = true
	f = newFixture(t, settings)
	require.NoError(t, f.runner.Run(context.Background()))
	assert.ElementsMatch(t, []string{"102", "103"}, f.dest.created)
	assert.Empty(t, f.dest.deleted, "run never deletes")
}

func TestStartRejectsWhenBusy(t *testing.T) {
	f := newFixture(t, testSettings())
	f.state.SetState(types.StateUploading)

	err := f.runner.Start(context.Background(), Request{Action: ActionCompare})
	var busy *ErrBusy
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, types.StateUploading, busy.State)

	assert.Error(t, f.runner.Start(context.Background(), Request{Action: "bogus"}))
}

func TestStartRunsInBackground(t *testing.T) {
	f := newFixture(t, testSettings())

	require.NoError(t, f.runner.Start(context.Background(), Request{Action: ActionCompare, KnowledgeSourceID: "ks2"}))

	require.Eventually(t, func() bool {
		return f.state.GetState() == types.StateComplete
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "ks2", f.state.Comparison().KnowledgeSourceID)
}

func TestStartClaimsSessionBeforeReturning(t *testing.T) {
	f := newFixture(t, testSettings())
	f.articles.gate = make(chan struct{})
	ctx := context.Background()

	require.NoError(t, f.runner.Start(ctx, Request{Action: ActionCompare, KnowledgeSourceID: "ks1"}))
	assert.True(t, f.state.GetState().Busy(), "the first request owns the session on return")

	err := f.runner.Start(ctx, Request{Action: ActionDelete})
	var busy *ErrBusy
	require.ErrorAs(t, err, &busy)
	assert.True(t, busy.State.Busy())

	close(f.articles.gate)
	require.Eventually(t, func() bool {
		return f.state.GetState() == types.StateComplete
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, f.dest.deleted, "the rejected delete never ran")
}
