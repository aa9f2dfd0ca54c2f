package grabfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpsync/calllog"
	"helpsync/client"
	"helpsync/types"
)

func TestHTMLCleanerToMarkdown(t *testing.T) {
	c := NewHTMLCleaner()

	got := c.Clean("<p>Hello <strong>world</strong></p><script>alert(1)</script>")
	assert.Equal(t, "Hello **world**", got)

	assert.Equal(t, "", c.Clean("   "))
}

func TestHTMLCleanerFallsBackToPlainText(t *testing.T) {
	c := NewHTMLCleaner()
	c.convert = func(string) (string, error) { return "", errors.New("converter exploded") }

	got := c.Clean("<div><h1>Title</h1><p>Pay with   card</p></div>")
	assert.Equal(t, "TitlePay with card", got)
}

func TestPlainTextDropsScripts(t *testing.T) {
	c := NewHTMLCleaner()
	assert.Equal(t, "Visible", c.PlainText("<p>Visible</p><script>var x = 1;</script>"))
}

type upperCleaner struct{}

func (upperCleaner) Clean(html string) string { return "cleaned:" + html }

func TestNormalize(t *testing.T) {
	var raw types.RawSourceArticle
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"uuid":"u-1","name":" How to pay ","body":"<p>x</p>"}`), &raw))

	n := NewNormalizer(upperCleaner{})
	got := n.Normalize(raw)

	assert.Equal(t, types.SourceArticle{
		ID:          "42",
		UUID:        "u-1",
		Name:        "How to pay",
		RawBody:     "<p>x</p>",
		CleanedBody: "cleaned:<p>x</p>",
	}, got)
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	n := NewNormalizer(upperCleaner{})
	got := n.NormalizeAll([]types.RawSourceArticle{{ID: "b"}, {ID: "a"}})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/driver/en-ph/articles", r.URL.Path)
		_, _ = w.Write([]byte(`{"articles":[{"id":7,"uuid":"x","name":"How to pay","body":"<p>Use cash</p>"},{"id":"8","name":"Other","body":""}]}`))
	}))
	defer srv.Close()

	log := calllog.NewLog(5)
	f := NewFetcher(srv.URL+"/{user_type}/{locale}/articles", time.Second, log)

	articles, err := f.Fetch(context.Background(), "driver", "en-ph")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "7", articles[0].ID.String())
	assert.Equal(t, "8", articles[1].ID.String())

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Fetch help-center articles for driver/en-ph", entries[0].Details)
}

func TestFetcherRejectsNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second, nil)
	_, err := f.Fetch(context.Background(), "passenger", "en-sg")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, client.StatusOf(err))
}
