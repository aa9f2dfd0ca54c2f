package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpsync/config"
	"helpsync/history"
	"helpsync/types"
)

func sourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/passenger/en-sg", r.URL.Path)
		_, _ = w.Write([]byte(`{"articles":[
			{"id":1,"name":"Paying with cards","body":"<p>How to pay with your card in the app safely.</p>"},
			{"id":2,"name":"Updating your profile","body":"<p>Open the account page and edit your profile details.</p>"}
		]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type adaServer struct {
	*httptest.Server
	mu      sync.Mutex
	created []types.DestinationPayload
}

func newAdaServer(t *testing.T) *adaServer {
	t.Helper()
	a := &adaServer{}
	a.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/articles/":
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"Paying with cards"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/bulk/articles/":
			var payloads []types.DestinationPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payloads))
			a.mu.Lock()
			a.created = append(a.created, payloads...)
			a.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(a.Close)
	return a
}

func testSettings(sourceURL, adaURL string) *config.Settings {
	return &config.Settings{
		Ada:    config.AdaConfig{BaseURL: adaURL, APIKey: "key", KnowledgeSourceID: "ks1"},
		Source: config.SourceConfig{URL: sourceURL + "/{user_type}/{locale}", UserType: "passenger", Locale: "en-sg"},
		Sync:   config.SyncConfig{MaxPages: 10, CallLogSize: 20},
	}
}

func TestNewWithoutOptionalBackends(t *testing.T) {
	app := New(context.Background(), testSettings("http://source", "http://ada"))
	defer app.Close()

	require.NotNil(t, app.Runner)
	require.NotNil(t, app.Ada)
	assert.IsType(t, &history.MemoryStore{}, app.History)
	assert.Nil(t, app.Archiver)
}

func TestEndToEndWithRedisHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	source := sourceServer(t)
	ada := newAdaServer(t)

	settings := testSettings(source.URL, ada.URL)
	settings.Redis = config.RedisConfig{Addr: mr.Addr(), Key: "e2e:history"}

	app := New(context.Background(), settings)
	defer app.Close()
	require.IsType(t, &history.RedisStore{}, app.History)

	ctx := context.Background()
	require.NoError(t, app.Runner.Compare(ctx, ""))

	c := app.State.Comparison()
	require.NotNil(t, c)
	assert.Len(t, c.Existing, 1)
	require.Len(t, c.New, 1)
	assert.Equal(t, "2", c.New[0].ID)

	report, err := app.Runner.UploadNew(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)

	require.Len(t, ada.created, 1)
	assert.Equal(t, "2", ada.created[0].ID)
	assert.Equal(t, "ks1", ada.created[0].KnowledgeSourceID)
	assert.Equal(t, "https://help.grab.com/passenger/en-sg/2", ada.created[0].URL)

	recent, err := app.History.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, report.RunID, recent[0].RunID)

	// source fetch, two list pages and one create
	assert.Equal(t, 4, app.Calls.Len())
}
