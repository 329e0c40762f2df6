package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sys/unix"

	"discflight/internal/config"
	"discflight/internal/model"
	"discflight/internal/store"
)

const modelBucketCheck = "Model bucket"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase opens the SQLite file, creating the schema if needed, and pings it.
func CheckDatabase(ctx context.Context, path string) Result {
	const name = "Database"
	st, err := store.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSource fetches the certification list page once.
func CheckSource(ctx context.Context, listURL, userAgent string, timeout time.Duration) Result {
	const name = "Source site"

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := resty.New().
		SetHeader("User-Agent", userAgent).
		R().
		SetContext(checkCtx).
		Get(listURL)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(listURL, err)}
	}
	if resp.IsError() {
		return Result{Name: name, Detail: fmt.Sprintf("%s returned %d", listURL, resp.StatusCode())}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", listURL)}
}

// CheckModelBucket lists the bucket and reports the artifact Acquire would pick.
func CheckModelBucket(ctx context.Context, objects model.ObjectStore, timeout time.Duration) Result {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	listed, err := objects.List(checkCtx)
	if err != nil {
		return Result{Name: modelBucketCheck, Detail: summarizeNetError("bucket", err)}
	}
	newest, ok := model.Newest(listed)
	if !ok {
		return Result{Name: modelBucketCheck, Detail: "bucket is empty; predictions will fail until a model is uploaded"}
	}
	return Result{
		Name:   modelBucketCheck,
		Passed: true,
		Detail: fmt.Sprintf("%d artifacts, newest %s (%s)", len(listed), newest.Key, newest.LastModified.UTC().Format(time.RFC3339)),
	}
}

// CheckPublisher reports the announcement channel. Twitter credentials are
// only checked for presence; posting is the only real verification.
func CheckPublisher(cfg *config.Config) Result {
	const name = "Publisher"
	switch cfg.Publisher.Channel {
	case config.ChannelTwitter:
		if !cfg.TwitterConfigured() {
			return Result{Name: name, Detail: "twitter channel selected without credentials"}
		}
		return Result{Name: name, Passed: true, Detail: "twitter credentials present"}
	case config.ChannelNtfy:
		if cfg.Ntfy.Topic == "" {
			return Result{Name: name, Detail: "ntfy channel selected without a topic"}
		}
		return Result{Name: name, Passed: true, Detail: "ntfy topic " + cfg.Ntfy.Topic}
	case config.ChannelLog, "":
		return Result{Name: name, Passed: true, Detail: "announcements go to the log only"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown channel %q", cfg.Publisher.Channel)}
	}
}

func summarizeNetError(target string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out", target)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s timed out", target)
	}
	return err.Error()
}
