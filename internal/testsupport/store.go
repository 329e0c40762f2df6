package testsupport

import (
	"context"
	"testing"

	"discflight/internal/config"
	"discflight/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SampleDisc returns a fully populated disc keyed by url.
func SampleDisc(url string) store.Disc {
	return store.Disc{
		URL:                   url,
		Manufacturer:          "Innova Champion Discs",
		Name:                  "Destroyer",
		ApprovedDate:          "Apr 23, 2024",
		MaxWeight:             "175.1gr",
		Diameter:              "21.2cm",
		Height:                "1.4cm",
		RimDepth:              "1.2cm",
		RimThickness:          "2.2cm",
		InsideRimDiameter:     "16.8cm",
		RimDepthDiameterRatio: "5.7%",
		RimConfig:             "36.5",
		Flexibility:           "10.42kg",
	}
}

// SeedDiscs inserts discs and fails the test on error.
func SeedDiscs(t testing.TB, st *store.Store, discs ...store.Disc) {
	t.Helper()
	for _, disc := range discs {
		if _, err := st.InsertDisc(context.Background(), disc); err != nil {
			t.Fatalf("seed disc %s: %v", disc.URL, err)
		}
	}
}
