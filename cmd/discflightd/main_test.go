package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveOptions(t *testing.T) {
	env := map[string]string{
		"DISCFLIGHT_CONFIG": " /etc/discflight/config.toml ",
		"DISCFLIGHT_STAGES": "scrape, ,publish",
	}
	getenv := func(key string) string { return env[key] }

	got := resolveOptions(nil, getenv)
	want := daemonOptions{configPath: "/etc/discflight/config.toml", stages: []string{"scrape", "publish"}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(daemonOptions{})); diff != "" {
		t.Fatalf("env options mismatch (-want +got):\n%s", diff)
	}

	got = resolveOptions([]string{"predict"}, getenv)
	if diff := cmp.Diff([]string{"predict"}, got.stages); diff != "" {
		t.Fatalf("args should override env (-want +got):\n%s", diff)
	}

	got = resolveOptions(nil, func(string) string { return "" })
	if got.configPath != "" || len(got.stages) != 0 {
		t.Fatalf("expected empty options, got %+v", got)
	}
}
