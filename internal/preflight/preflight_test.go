package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"discflight/internal/config"
	"discflight/internal/model"
	"discflight/internal/stage"
	"discflight/internal/testsupport"
)

type fakeObjects struct {
	objects []model.Object
	err     error
}

func (f fakeObjects) List(context.Context) ([]model.Object, error) { return f.objects, f.err }

func (f fakeObjects) Download(context.Context, string, string) error {
	return errors.New("not implemented")
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDatabaseCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "discflight.db")
	result := CheckDatabase(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestCheckSource(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		if r.URL.Path != "/discs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok := CheckSource(context.Background(), srv.URL+"/discs", "discflight-test", time.Second)
	if !ok.Passed {
		t.Fatalf("expected pass, got: %s", ok.Detail)
	}
	if agent != "discflight-test" {
		t.Fatalf("expected configured user agent, got %q", agent)
	}

	missing := CheckSource(context.Background(), srv.URL+"/gone", "discflight-test", time.Second)
	if missing.Passed || !strings.Contains(missing.Detail, "404") {
		t.Fatalf("expected 404 failure, got %+v", missing)
	}
}

func TestCheckSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	result := CheckSource(context.Background(), srv.URL, "ua", 50*time.Millisecond)
	if result.Passed {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("expected timeout detail, got %q", result.Detail)
	}
}

func TestCheckModelBucket(t *testing.T) {
	now := time.Date(2024, 4, 23, 12, 0, 0, 0, time.UTC)
	objects := fakeObjects{objects: []model.Object{
		{Key: "model-1.json", LastModified: now.Add(-time.Hour)},
		{Key: "model-2.json", LastModified: now},
	}}
	result := CheckModelBucket(context.Background(), objects, time.Second)
	if !result.Passed || !strings.Contains(result.Detail, "model-2.json") {
		t.Fatalf("expected newest artifact reported, got %+v", result)
	}

	if empty := CheckModelBucket(context.Background(), fakeObjects{}, time.Second); empty.Passed {
		t.Fatal("expected empty bucket to fail")
	}

	failing := CheckModelBucket(context.Background(), fakeObjects{err: errors.New("access denied")}, time.Second)
	if failing.Passed || failing.Detail != "access denied" {
		t.Fatalf("expected list error surfaced, got %+v", failing)
	}
}

func TestCheckPublisher(t *testing.T) {
	cfg := config.Default()
	if result := CheckPublisher(&cfg); !result.Passed {
		t.Fatalf("expected log channel to pass, got %s", result.Detail)
	}
	cfg.Publisher.Channel = config.ChannelTwitter
	if result := CheckPublisher(&cfg); result.Passed {
		t.Fatal("expected twitter without credentials to fail")
	}
}

func TestRunAllScopesChecksToStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	results := RunAll(context.Background(), cfg, []string{stage.Publish})
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	got := strings.Join(names, ",")
	if got != "Data directory,Log directory,Database,Publisher" {
		t.Fatalf("unexpected checks %q", got)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	cfg.Storage.Endpoint = ""
	results = RunAll(context.Background(), cfg, []string{stage.Predict})
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != modelBucketCheck {
		t.Fatalf("expected only the bucket check to fail, got %+v", failed)
	}
}
