package publish_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"discflight/internal/features"
	"discflight/internal/model"
	"discflight/internal/predict"
	"discflight/internal/publish"
	"discflight/internal/store"
	"discflight/internal/testsupport"
)

type bucket struct {
	artifact []byte
}

func (b bucket) List(context.Context) ([]model.Object, error) {
	return []model.Object{{Key: "models/linear.json", LastModified: time.Now(), Size: int64(len(b.artifact))}}, nil
}

func (b bucket) Download(_ context.Context, _ string, path string) error {
	return os.WriteFile(path, b.artifact, 0o644)
}

func TestPredictThenPublishSingleDisc(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedDiscs(t, st, store.Disc{
		URL:                   "a",
		Diameter:              "21.2cm",
		Height:                "1.5cm",
		RimDepth:              "1.2cm",
		InsideRimDiameter:     "1.2cm",
		RimDepthDiameterRatio: "10%",
		RimConfig:             "X",
	})

	weights := make([][]float64, len(model.Outputs))
	for i := range weights {
		weights[i] = make([]float64, len(features.Names))
	}
	artifact, err := json.Marshal(model.Artifact{
		Features:   features.Names,
		Outputs:    model.Outputs,
		Weights:    weights,
		Intercepts: []float64{10, 5, -1, 3},
	})
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	handle := model.NewHandle(bucket{artifact: artifact}, filepath.Join(cfg.Predictor.ModelDir, "model.json"), time.Second, nil)

	if _, err := predict.New(st, handle, nil).Run(ctx); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if _, err := os.Stat(handle.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected model copy released, stat err=%v", err)
	}

	preds, err := st.ListPredictions(ctx, store.PredictionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("expected one prediction, got %d", len(preds))
	}
	p := preds[0]
	if p.Speed != 10 || p.Glide != 5 || p.Turn != -1 || p.Fade != 3 || p.Published {
		t.Fatalf("unexpected prediction %+v", p)
	}

	announcer := &recordingAnnouncer{}
	if _, err := publish.NewTracker(st, announcer, time.Second, nil).Run(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(announcer.texts) != 1 {
		t.Fatalf("expected exactly one announcement, got %d", len(announcer.texts))
	}
	preds, _ = st.ListPredictions(ctx, store.PredictionFilter{})
	if !preds[0].Published {
		t.Fatalf("expected record to be published")
	}
}
