package publish_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"discflight/internal/config"
	"discflight/internal/publish"
	"discflight/internal/services"
	"discflight/internal/store"
	"discflight/internal/testsupport"
)

type recordingAnnouncer struct {
	mu     sync.Mutex
	texts  []string
	failOn map[string]bool
}

func (r *recordingAnnouncer) Announce(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for needle := range r.failOn {
		if strings.Contains(text, needle) {
			return errors.New("429 too many requests")
		}
	}
	r.texts = append(r.texts, text)
	return nil
}

func seedPredictions(t *testing.T, st *store.Store, urls ...string) {
	t.Helper()
	preds := make([]store.Prediction, 0, len(urls))
	for _, url := range urls {
		preds = append(preds, store.Prediction{
			Disc:  testsupport.SampleDisc(url),
			Speed: 12, Glide: 5, Turn: -1, Fade: 3,
		})
	}
	if _, err := st.InsertPredictions(context.Background(), preds); err != nil {
		t.Fatalf("seed predictions: %v", err)
	}
}

func TestRender(t *testing.T) {
	p := store.Prediction{
		Disc:  store.Disc{URL: "https://example.test/disc/destroyer", Manufacturer: "Innova", Name: "Destroyer"},
		Speed: 12, Glide: 5, Turn: -1, Fade: 3,
	}
	want := "Innova Destroyer has been approved. Estimated flight numbers:\nSPEED: 12\nGLIDE: 5\nTURN : -1\nFADE : 3\n\nSee it here: https://example.test/disc/destroyer"
	if got := publish.Render(p); got != want {
		t.Fatalf("unexpected render:\n%s", got)
	}
}

func TestTrackerPublishesAndFlips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedPredictions(t, st, "https://example.test/a", "https://example.test/b")

	announcer := &recordingAnnouncer{}
	tracker := publish.NewTracker(st, announcer, time.Second, nil)
	ctx := context.Background()

	result, err := tracker.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Message != "2 tweets created successfully." {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(announcer.texts) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(announcer.texts))
	}

	// published records are never selected again
	result, err = tracker.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Counts["pending"] != 0 || len(announcer.texts) != 2 {
		t.Fatalf("expected nothing to publish, counts=%v announcements=%d", result.Counts, len(announcer.texts))
	}
}

type slowAnnouncer struct {
	recordingAnnouncer
	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (s *slowAnnouncer) Announce(ctx context.Context, text string) error {
	s.once.Do(func() { close(s.started) })
	<-s.gate
	return s.recordingAnnouncer.Announce(ctx, text)
}

func TestOverlappingRunsAnnounceOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedPredictions(t, st, "https://example.test/a")

	announcer := &slowAnnouncer{started: make(chan struct{}), gate: make(chan struct{})}
	tracker := publish.NewTracker(st, announcer, 5*time.Second, nil)

	errs := make(chan error, 2)
	go func() {
		_, err := tracker.Run(context.Background())
		errs <- err
	}()
	<-announcer.started
	go func() {
		_, err := tracker.Run(context.Background())
		errs <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(announcer.gate)

	for range 2 {
		if err := <-errs; err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	announcer.mu.Lock()
	defer announcer.mu.Unlock()
	if len(announcer.texts) != 1 {
		t.Fatalf("expected one announcement across overlapping runs, got %d", len(announcer.texts))
	}
}

func TestRunGivesUpWaitingForScan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedPredictions(t, st, "https://example.test/a")

	announcer := &slowAnnouncer{started: make(chan struct{}), gate: make(chan struct{})}
	tracker := publish.NewTracker(st, announcer, 5*time.Second, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tracker.Run(context.Background())
	}()
	<-announcer.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := tracker.Run(ctx); !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish failure while waiting, got %v", err)
	}
	close(announcer.gate)
	<-done
}

func TestTrackerFailureLeavesRecordForRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	seedPredictions(t, st, "https://example.test/ok", "https://example.test/flaky", "https://example.test/ok2")

	announcer := &recordingAnnouncer{failOn: map[string]bool{"/flaky": true}}
	tracker := publish.NewTracker(st, announcer, time.Second, nil)
	ctx := context.Background()

	result, err := tracker.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Counts["published"] != 2 || result.Counts["failed"] != 1 {
		t.Fatalf("unexpected counts %v", result.Counts)
	}

	unpublished, err := st.UnpublishedPredictions(ctx)
	if err != nil {
		t.Fatalf("unpublished: %v", err)
	}
	if len(unpublished) != 1 || unpublished[0].URL != "https://example.test/flaky" {
		t.Fatalf("expected only flaky record unpublished, got %+v", unpublished)
	}

	announcer.failOn = nil
	result, err = tracker.Run(ctx)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if result.Counts["published"] != 1 {
		t.Fatalf("expected retry to publish one record, got %v", result.Counts)
	}
	if n, _ := st.CountPredictions(ctx, boolPtr(false)); n != 0 {
		t.Fatalf("expected all records published, %d remain", n)
	}
}

func TestTwitterAnnouncerSignsAndPosts(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]string
		gotPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"1790","text":"hi"}}`)
	}))
	defer srv.Close()

	announcer := publish.NewTwitterAnnouncer(config.Twitter{
		BaseURL:           srv.URL,
		APIKey:            "ck",
		APIKeySecret:      "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	}, time.Second)
	if err := announcer.Announce(context.Background(), "hello"); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if gotPath != "/2/tweets" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") || !strings.Contains(gotAuth, `oauth_consumer_key="ck"`) {
		t.Fatalf("expected oauth1 signature, got %q", gotAuth)
	}
	if gotBody["text"] != "hello" {
		t.Fatalf("unexpected body %v", gotBody)
	}
}

func TestTwitterAnnouncerRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Forbidden","detail":"duplicate content"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	announcer := publish.NewTwitterAnnouncer(config.Twitter{BaseURL: srv.URL, APIKey: "a", APIKeySecret: "b", AccessToken: "c", AccessTokenSecret: "d"}, time.Second)
	err := announcer.Announce(context.Background(), "dup")
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "duplicate content") {
		t.Fatalf("expected 403 error with body, got %v", err)
	}
}

func TestNewAnnouncerSelectsChannel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := publish.NewAnnouncer(cfg, nil); err != nil {
		t.Fatalf("log channel: %v", err)
	}

	cfg.Publisher.Channel = config.ChannelTwitter
	cfg.Twitter = config.Twitter{}
	if _, err := publish.NewAnnouncer(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.Twitter = config.Twitter{APIKey: "a", APIKeySecret: "b", AccessToken: "c", AccessTokenSecret: "d"}
	a, err := publish.NewAnnouncer(cfg, nil)
	if err != nil {
		t.Fatalf("twitter channel: %v", err)
	}
	if _, ok := a.(*publish.TwitterAnnouncer); !ok {
		t.Fatalf("expected twitter announcer, got %T", a)
	}

	cfg.Publisher.Channel = config.ChannelNtfy
	if _, err := publish.NewAnnouncer(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for ntfy without topic, got %v", err)
	}
	cfg.Ntfy.Topic = "https://ntfy.example/discflight"
	a, err = publish.NewAnnouncer(cfg, nil)
	if err != nil {
		t.Fatalf("ntfy channel: %v", err)
	}
	if _, ok := a.(*publish.NtfyAnnouncer); !ok {
		t.Fatalf("expected ntfy announcer, got %T", a)
	}
}

func TestNtfyAnnouncerPostsToTopic(t *testing.T) {
	var captured struct {
		path     string
		title    string
		tags     string
		priority string
		body     string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		captured.path = r.URL.Path
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		captured.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	announcer := publish.NewNtfyAnnouncer(config.Ntfy{Topic: srv.URL + "/discflight", Priority: "high"}, time.Second)
	if err := announcer.Announce(context.Background(), "Discraft Buzzz has been approved."); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if captured.path != "/discflight" {
		t.Fatalf("expected topic path, got %q", captured.path)
	}
	if captured.title != "discflight - New Disc Approved" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.tags != "flying_disc,discflight" {
		t.Fatalf("unexpected tags %q", captured.tags)
	}
	if captured.priority != "high" {
		t.Fatalf("expected priority header, got %q", captured.priority)
	}
	if captured.body != "Discraft Buzzz has been approved." {
		t.Fatalf("unexpected body %q", captured.body)
	}
}

func TestNtfyAnnouncerReportsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Priority") != "" {
			t.Errorf("default priority should not send a header, got %q", r.Header.Get("Priority"))
		}
		http.Error(w, "topic reserved", http.StatusForbidden)
	}))
	defer srv.Close()

	announcer := publish.NewNtfyAnnouncer(config.Ntfy{Topic: srv.URL, Priority: "default"}, time.Second)
	err := announcer.Announce(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "topic reserved") {
		t.Fatalf("expected 403 error with body, got %v", err)
	}
}

func boolPtr(v bool) *bool { return &v }
