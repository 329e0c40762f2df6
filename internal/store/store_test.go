package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"discflight/internal/store"
	"discflight/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if st.Path() != cfg.Paths.Database {
		t.Fatalf("unexpected path %q", st.Path())
	}
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := store.OpenPath(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
}

func TestInsertDiscIgnoresDuplicateURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	disc := testsupport.SampleDisc("https://example.com/discs/destroyer")
	added, err := st.InsertDisc(ctx, disc)
	if err != nil || !added {
		t.Fatalf("first insert: added=%v err=%v", added, err)
	}
	disc.Manufacturer = "Someone Else"
	added, err = st.InsertDisc(ctx, disc)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if added {
		t.Fatal("expected duplicate url to be ignored")
	}

	discs, err := st.ListDiscs(ctx)
	if err != nil {
		t.Fatalf("ListDiscs: %v", err)
	}
	if len(discs) != 1 || discs[0].Manufacturer != "Innova Champion Discs" {
		t.Fatalf("unexpected discs: %#v", discs)
	}
	if discs[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestInsertDiscConcurrentSameURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.InsertDisc(ctx, testsupport.SampleDisc("https://example.com/discs/race"))
			if err != nil {
				t.Errorf("InsertDisc: %v", err)
				return
			}
			if ok {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", added)
	}
	if n, err := st.CountDiscs(ctx); err != nil || n != 1 {
		t.Fatalf("expected one disc, got %d (err=%v)", n, err)
	}
}

func TestInsertPredictionsBatchAndPublishFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := []store.Prediction{
		{Disc: testsupport.SampleDisc("a"), Speed: 10, Glide: 5, Turn: -1, Fade: 3},
		{Disc: testsupport.SampleDisc("b"), Speed: 2, Glide: 3, Turn: 0, Fade: 1},
	}
	n, err := st.InsertPredictions(ctx, batch)
	if err != nil {
		t.Fatalf("InsertPredictions: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}

	n, err = st.InsertPredictions(ctx, batch[:1])
	if err != nil {
		t.Fatalf("second InsertPredictions: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected duplicate batch to insert nothing, got %d", n)
	}

	urls, err := st.PredictionURLs(ctx)
	if err != nil {
		t.Fatalf("PredictionURLs: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}

	pending, err := st.UnpublishedPredictions(ctx)
	if err != nil {
		t.Fatalf("UnpublishedPredictions: %v", err)
	}
	if len(pending) != 2 || pending[0].URL != "a" || pending[0].Turn != -1 || pending[0].Published {
		t.Fatalf("unexpected pending predictions: %#v", pending)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	flipped, err := st.MarkPublished(ctx, "a", at)
	if err != nil || !flipped {
		t.Fatalf("MarkPublished: flipped=%v err=%v", flipped, err)
	}
	flipped, err = st.MarkPublished(ctx, "a", at.Add(time.Hour))
	if err != nil {
		t.Fatalf("second MarkPublished: %v", err)
	}
	if flipped {
		t.Fatal("expected already-published record to stay untouched")
	}

	published := true
	done, err := st.ListPredictions(ctx, store.PredictionFilter{Published: &published})
	if err != nil {
		t.Fatalf("ListPredictions: %v", err)
	}
	if len(done) != 1 || done[0].PublishedAt == nil || !done[0].PublishedAt.Equal(at) {
		t.Fatalf("unexpected published predictions: %#v", done)
	}

	pending, err = st.UnpublishedPredictions(ctx)
	if err != nil {
		t.Fatalf("UnpublishedPredictions: %v", err)
	}
	if len(pending) != 1 || pending[0].URL != "b" {
		t.Fatalf("expected only b pending, got %#v", pending)
	}
}

func TestInsertPredictionsRejectsMissingURLWithoutPartialWrite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := []store.Prediction{
		{Disc: testsupport.SampleDisc("ok")},
		{Disc: store.Disc{}},
	}
	if _, err := st.InsertPredictions(ctx, batch); err == nil {
		t.Fatal("expected error for prediction without url")
	}
	if n, err := st.CountPredictions(ctx, nil); err != nil || n != 0 {
		t.Fatalf("expected no predictions persisted, got %d (err=%v)", n, err)
	}
}

func TestListPredictionsFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	other := testsupport.SampleDisc("c")
	other.Manufacturer = "Discraft"
	if _, err := st.InsertPredictions(ctx, []store.Prediction{
		{Disc: testsupport.SampleDisc("a")},
		{Disc: testsupport.SampleDisc("b")},
		{Disc: other},
	}); err != nil {
		t.Fatalf("InsertPredictions: %v", err)
	}

	got, err := st.ListPredictions(ctx, store.PredictionFilter{Manufacturer: "discraft"})
	if err != nil {
		t.Fatalf("ListPredictions: %v", err)
	}
	if len(got) != 1 || got[0].URL != "c" {
		t.Fatalf("expected case-insensitive manufacturer match, got %#v", got)
	}

	got, err = st.ListPredictions(ctx, store.PredictionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListPredictions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(got))
	}
}

func TestUsageSummaryAggregatesPerEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 4, 23, 12, 0, 0, 0, time.UTC)
	entries := []store.UsageEntry{
		{Endpoint: "/create_tweet", Method: "POST", Time: base, ResponseCode: 200, ResponseMessage: "1 tweets created successfully.", ResponseTimeMS: 10.111},
		{Endpoint: "/create_tweet", Method: "POST", Time: base.Add(time.Minute), ResponseCode: 500, ResponseMessage: "boom", ResponseTimeMS: 20.222},
		{Endpoint: "/predict", Method: "POST", Time: base.Add(30 * time.Second), ResponseCode: 200, ResponseTimeMS: 5},
	}
	for _, entry := range entries {
		if err := st.RecordUsage(ctx, entry); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	summary, err := st.UsageSummary(ctx)
	if err != nil {
		t.Fatalf("UsageSummary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 endpoints, got %#v", summary)
	}
	tweet := summary[0]
	if tweet.Endpoint != "/create_tweet" || tweet.Count != 2 {
		t.Fatalf("unexpected summary row: %#v", tweet)
	}
	if tweet.AverageTimeMS != 15.17 {
		t.Fatalf("expected average rounded to 15.17, got %v", tweet.AverageTimeMS)
	}
	if !tweet.LastRun.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected last run %s", tweet.LastRun)
	}

	log, err := st.UsageEntries(ctx, 0)
	if err != nil {
		t.Fatalf("UsageEntries: %v", err)
	}
	if len(log) != 3 || log[0].ResponseMessage != "boom" || log[2].Endpoint != "/create_tweet" {
		t.Fatalf("expected newest first, got %#v", log)
	}
}

func TestRecordRunUpsertsAndLastRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if run, err := st.LastRun(ctx, "scrape"); err != nil || run != nil {
		t.Fatalf("expected no run yet, got %#v (err=%v)", run, err)
	}

	started := time.Date(2024, 4, 23, 12, 0, 0, 0, time.UTC)
	run := store.Run{ID: "r1", Stage: "scrape", StartedAt: started, Outcome: store.OutcomeRunning}
	if err := st.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	finished := started.Add(2 * time.Second)
	run.FinishedAt = &finished
	run.Outcome = store.OutcomeSucceeded
	run.Message = "done"
	run.Counts = map[string]int{"added": 3}
	if err := st.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun update: %v", err)
	}
	if err := st.RecordRun(ctx, store.Run{ID: "r0", Stage: "scrape", StartedAt: started.Add(-time.Hour), Outcome: store.OutcomeFailed}); err != nil {
		t.Fatalf("RecordRun older: %v", err)
	}

	last, err := st.LastRun(ctx, "scrape")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if last == nil || last.ID != "r1" || last.Outcome != store.OutcomeSucceeded || last.Counts["added"] != 3 {
		t.Fatalf("unexpected last run: %#v", last)
	}
	if last.FinishedAt == nil || !last.FinishedAt.Equal(finished) {
		t.Fatalf("unexpected finished_at: %v", last.FinishedAt)
	}
}

func TestOpenPathRejectsEmpty(t *testing.T) {
	if _, err := store.OpenPath(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := store.OpenPath(filepath.Join(t.TempDir(), "nested", "x.db")); err != nil {
		t.Fatalf("expected nested path to be created: %v", err)
	}
}
