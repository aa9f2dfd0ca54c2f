package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpsync/ada"
	"helpsync/client"
	"helpsync/types"
)

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// fakeDestination answers with a scripted status per item id
type fakeDestination struct {
	statuses map[string]int
	bodies   map[string]string
	errs     map[string]error
	created  [][]types.DestinationPayload
	deleted  []string
}

func (f *fakeDestination) respond(id string) (*client.Response, error) {
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	status := http.StatusOK
	if s, ok := f.statuses[id]; ok {
		status = s
	}
	return &client.Response{StatusCode: status, Body: []byte(f.bodies[id])}, nil
}

func (f *fakeDestination) CreateArticles(ctx context.Context, payloads []types.DestinationPayload, detail string) (*client.Response, error) {
	f.created = append(f.created, payloads)
	return f.respond(payloads[0].ID)
}

func (f *fakeDestination) DeleteArticle(ctx context.Context, id, detail string) (*client.Response, error) {
	f.deleted = append(f.deleted, id)
	return f.respond(id)
}

func articles(n int) []types.SourceArticle {
	out := make([]types.SourceArticle, n)
	for i := range out {
		id := fmt.Sprint(i + 1)
		out[i] = types.SourceArticle{ID: id, Name: "Article " + id, CleanedBody: "body " + id}
	}
	return out
}

func TestCreateAllIsolatesFailures(t *testing.T) {
	dest := &fakeDestination{
		statuses: map[string]int{"1": http.StatusCreated, "3": http.StatusInternalServerError},
		bodies:   map[string]string{"3": `{"error": "boom"}`},
	}
	d := NewDriver(dest, 0, discardLogger{})

	var progress []types.Progress
	report := d.CreateAll(context.Background(), articles(5), Options{
		RunID:      "run-1",
		Payload:    ada.PayloadOptions{UserType: "driver", LanguageLocale: "en-ph", KnowledgeSourceID: "ks1"},
		OnProgress: func(p types.Progress) { progress = append(progress, p) },
	})

	assert.Equal(t, 4, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, 5, report.Total())
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "ks1", report.KnowledgeSourceID)
	assert.InDelta(t, 80.0, report.SuccessRate(), 0.001)

	require.Len(t, report.Items, 5)
	for i, item := range report.Items {
		assert.Equal(t, fmt.Sprint(i+1), item.ItemID, "items keep input order")
		if i == 2 {
			assert.Equal(t, types.OutcomeFailure, item.Outcome)
			assert.Equal(t, http.StatusInternalServerError, item.StatusCode)
			assert.JSONEq(t, `{"error":"boom"}`, string(item.ErrorBody))
			assert.Equal(t, `HTTP 500: {"error":"boom"}`, item.Detail)
			continue
		}
		assert.Equal(t, types.OutcomeSuccess, item.Outcome)
	}

	// one single-element batch per article
	require.Len(t, dest.created, 5)
	for _, batch := range dest.created {
		assert.Len(t, batch, 1)
	}
	assert.Equal(t, "https://help.grab.com/driver/en-ph/1", dest.created[0][0].URL)

	require.Len(t, progress, 5)
	assert.Equal(t, types.Progress{Current: 5, Total: 5, Succeeded: 4, Failed: 1, Detail: "Created 5"}, progress[4])
	assert.Equal(t, 2, progress[2].Succeeded)
	assert.Equal(t, 1, progress[2].Failed)
	assert.InDelta(t, 60.0, progress[2].Percent(), 0.001)
}

func TestCreateAllUsesPrefixedID(t *testing.T) {
	dest := &fakeDestination{}
	d := NewDriver(dest, 0, discardLogger{})

	report := d.CreateAll(context.Background(), articles(1), Options{Payload: ada.PayloadOptions{IDPrefix: "grab-"}})
	require.Len(t, report.Items, 1)
	assert.Equal(t, "grab-1", report.Items[0].ItemID)
	assert.Equal(t, "grab-1", dest.created[0][0].ID)
}

func TestFailureDetailFallbacks(t *testing.T) {
	dest := &fakeDestination{
		statuses: map[string]int{"1": http.StatusBadGateway, "2": http.StatusAccepted},
		bodies:   map[string]string{"1": "upstream down"},
		errs:     map[string]error{"3": &client.TransportError{Method: "POST", URL: "u", Err: errors.New("timeout")}},
	}
	d := NewDriver(dest, 0, discardLogger{})

	report := d.CreateAll(context.Background(), articles(3), Options{})

	assert.Equal(t, 0, report.SuccessCount)
	assert.Equal(t, 3, report.FailureCount)
	assert.Equal(t, "HTTP 502: upstream down", report.Items[0].Detail)
	assert.Nil(t, report.Items[0].ErrorBody)
	assert.Equal(t, "HTTP 202: Accepted", report.Items[1].Detail, "202 is not a create success")
	assert.Equal(t, "POST u: timeout", report.Items[2].Detail)
}

func TestDeleteAll(t *testing.T) {
	dest := &fakeDestination{
		statuses: map[string]int{"a": http.StatusNoContent, "b": http.StatusCreated, "c": http.StatusOK},
	}
	d := NewDriver(dest, 0, discardLogger{})

	report := d.DeleteIDs(context.Background(), []string{"a", "b", "c"}, Options{})

	assert.Equal(t, []string{"a", "b", "c"}, dest.deleted)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, types.OperationDelete, report.Operation)
	assert.Equal(t, types.OutcomeFailure, report.Items[1].Outcome, "201 is not a delete success")
}

func TestDeleteAllSkipsArticleWithoutID(t *testing.T) {
	dest := &fakeDestination{}
	d := NewDriver(dest, 0, discardLogger{})

	report := d.DeleteAll(context.Background(), []types.DestinationArticle{
		{ID: "", Name: "no id"},
		{ID: "9", Name: "nine"},
	}, Options{})

	assert.Equal(t, []string{"9"}, dest.deleted, "the empty id is never sent")
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Items, 2)
	assert.Equal(t, types.OutcomeFailure, report.Items[0].Outcome)
	assert.Equal(t, "article has no id", report.Items[0].Detail)
	assert.Equal(t, "no id", report.Items[0].Name)
}

func TestCancelledContextReportsEveryItem(t *testing.T) {
	dest := &fakeDestination{}
	d := NewDriver(dest, 0, discardLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := d.CreateAll(ctx, articles(3), Options{})

	assert.Empty(t, dest.created)
	assert.Equal(t, 3, report.FailureCount)
	for _, item := range report.Items {
		assert.Equal(t, context.Canceled.Error(), item.Detail)
	}
}

func TestEmptyBatch(t *testing.T) {
	d := NewDriver(&fakeDestination{}, 0, discardLogger{})
	report := d.DeleteAll(context.Background(), nil, Options{})
	assert.Equal(t, 0, report.Total())
	assert.NotNil(t, report.Items)
	assert.Zero(t, report.SuccessRate())
}
