package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"helpsync/config"
)

type backend struct {
	mu      sync.Mutex
	deleted []string
	created int
}

func setupTest(t *testing.T) *backend {
	t.Helper()
	b := &backend{}

	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[
			{"id":"1","name":"Paying with cards","body":"<p>How to pay with your card in the app safely.</p>"},
			{"id":"2","name":"Updating your profile","body":"<p>Open the account page and edit your profile details.</p>"},
			{"id":"3","name":"Test article","body":"<p>Ignore this page, it only checks the pipeline.</p>"}
		]}`))
	}))
	t.Cleanup(source.Close)

	ada := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/articles/":
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"Paying with cards"},{"id":"9","name":"Retired article","content":"old"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/bulk/articles/":
			b.created++
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/articles/"):
			b.deleted = append(b.deleted, strings.TrimPrefix(r.URL.Path, "/articles/"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/sources":
			_, _ = w.Write([]byte(`[{"id":"ks1","name":"Passenger SG"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ada.Close)

	settings = &config.Settings{
		Ada:    config.AdaConfig{BaseURL: ada.URL, APIKey: "key", KnowledgeSourceID: "ks1"},
		Source: config.SourceConfig{URL: source.URL + "/{user_type}/{locale}", UserType: "passenger", Locale: "en-sg"},
		Sync:   config.SyncConfig{MaxPages: 10, CallLogSize: 20},
	}
	t.Cleanup(func() { settings = nil })

	resetFlags(rootCmd)
	return b
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestFetch(t *testing.T) {
	setupTest(t)
	path := filepath.Join(t.TempDir(), "articles.json")

	out, err := run(t, "fetch", "--json", path)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "Production articles (2)") || !strings.Contains(out, "Excluded articles (1)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	var export FetchExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("invalid export: %v", err)
	}
	if len(export.Production) != 2 || len(export.Excluded) != 1 {
		t.Errorf("export = %d production, %d excluded", len(export.Production), len(export.Excluded))
	}
}

func TestFetchUnknownUserType(t *testing.T) {
	setupTest(t)

	_, err := run(t, "fetch", "--user-type", "pilot")
	if err == nil || !strings.Contains(err.Error(), "unknown user type") {
		t.Fatalf("expected unknown user type error, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	setupTest(t)

	out, err := run(t, "compare", "-k", "ks1")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(out, "1 existing, 1 new, 1 orphaned (2 pages fetched)") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestUpload(t *testing.T) {
	b := setupTest(t)

	out, err := run(t, "upload")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if b.created != 1 {
		t.Errorf("created = %d; want 1", b.created)
	}
	if !strings.Contains(out, "Succeeded: 1 | Failed: 0 | Success rate: 100.0%") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDeleteRequiresYes(t *testing.T) {
	b := setupTest(t)

	out, err := run(t, "delete")
	if err == nil || !strings.Contains(err.Error(), "without --yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if len(b.deleted) != 0 {
		t.Fatalf("deleted without confirmation: %v", b.deleted)
	}
	if !strings.Contains(out, "Retired article") {
		t.Errorf("orphans should be listed:\n%s", out)
	}

	resetFlags(rootCmd)
	if _, err := run(t, "delete", "--yes"); err != nil {
		t.Fatalf("delete --yes failed: %v", err)
	}
	if len(b.deleted) != 1 || b.deleted[0] != "9" {
		t.Errorf("deleted = %v; want [9]", b.deleted)
	}
}

func TestSourcesList(t *testing.T) {
	setupTest(t)

	out, err := run(t, "sources", "list")
	if err != nil {
		t.Fatalf("sources list failed: %v", err)
	}
	if !strings.Contains(out, "Passenger SG") {
		t.Errorf("expected source in output:\n%s", out)
	}
}

func TestSourcesDeleteRequiresYes(t *testing.T) {
	setupTest(t)

	_, err := run(t, "sources", "delete", "ks1")
	if err == nil || !strings.Contains(err.Error(), "without --yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}
