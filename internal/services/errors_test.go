package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"discflight/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrModelUnavailable, "predict", "fetch", "download newest artifact", base)
	if !errors.Is(err, services.ErrModelUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"predict", "fetch", "download newest artifact", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapTagsDeadlineAsTimeout(t *testing.T) {
	cause := fmt.Errorf("list objects: %w", context.DeadlineExceeded)
	err := services.Wrap(services.ErrModelUnavailable, "predict", "fetch", "", cause)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
	if !errors.Is(err, services.ErrModelUnavailable) {
		t.Fatalf("expected original marker, got %v", err)
	}
	if got := services.HTTPStatus(err); got != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"source", services.Wrap(services.ErrSourceUnavailable, "scrape", "list", "", nil), http.StatusServiceUnavailable},
		{"model", services.Wrap(services.ErrModelUnavailable, "predict", "load", "", nil), http.StatusServiceUnavailable},
		{"validation", services.Wrap(services.ErrValidation, "publish", "", "bad", nil), http.StatusBadRequest},
		{"persistence", services.Wrap(services.ErrPersistence, "predict", "insert", "", errors.New("disk")), http.StatusInternalServerError},
		{"unclassified", errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
