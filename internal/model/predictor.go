package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/mat"

	"discflight/internal/features"
)

// Outputs lists the predicted flight numbers in artifact order.
var Outputs = []string{"SPEED", "GLIDE", "TURN", "FADE"}

// Estimate is the raw, unrounded model output for one disc.
type Estimate struct {
	Speed float64
	Glide float64
	Turn  float64
	Fade  float64
}

// Predictor runs inference over a batch of feature vectors.
type Predictor interface {
	Predict(vectors []features.FeatureVector) ([]Estimate, error)
}

// Artifact is the serialized form of a linear multi-output regressor.
type Artifact struct {
	Version    int         `json:"version"`
	Features   []string    `json:"features"`
	Outputs    []string    `json:"outputs"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
	Impute     []float64   `json:"impute,omitempty"`
}

// Validate checks the artifact matches the feature and output layout the
// pipeline produces.
func (a Artifact) Validate() error {
	if !slices.Equal(a.Features, features.Names) {
		return fmt.Errorf("features %v do not match %v", a.Features, features.Names)
	}
	if !slices.Equal(a.Outputs, Outputs) {
		return fmt.Errorf("outputs %v do not match %v", a.Outputs, Outputs)
	}
	if len(a.Weights) != len(Outputs) {
		return fmt.Errorf("expected %d weight rows, got %d", len(Outputs), len(a.Weights))
	}
	for i, row := range a.Weights {
		if len(row) != len(features.Names) {
			return fmt.Errorf("weight row %d has %d columns, expected %d", i, len(row), len(features.Names))
		}
	}
	if len(a.Intercepts) != len(Outputs) {
		return fmt.Errorf("expected %d intercepts, got %d", len(Outputs), len(a.Intercepts))
	}
	if len(a.Impute) != 0 && len(a.Impute) != len(features.Names) {
		return fmt.Errorf("expected %d impute values, got %d", len(features.Names), len(a.Impute))
	}
	return nil
}

// DecodeArtifact reads and validates an artifact.
func DecodeArtifact(r io.Reader) (Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	if err := dec.Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// LinearModel computes y = W·x + b for each feature vector. Unset features
// take the artifact's impute value, or zero when none is given.
type LinearModel struct {
	weights    *mat.Dense
	intercepts []float64
	impute     []float64
}

// NewLinearModel builds a predictor from a validated artifact.
func NewLinearModel(a Artifact) (*LinearModel, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	cols := len(features.Names)
	data := make([]float64, 0, len(Outputs)*cols)
	for _, row := range a.Weights {
		data = append(data, row...)
	}
	impute := a.Impute
	if len(impute) == 0 {
		impute = make([]float64, cols)
	}
	return &LinearModel{
		weights:    mat.NewDense(len(Outputs), cols, data),
		intercepts: append([]float64(nil), a.Intercepts...),
		impute:     append([]float64(nil), impute...),
	}, nil
}

// Predict implements Predictor.
func (m *LinearModel) Predict(vectors []features.FeatureVector) ([]Estimate, error) {
	if m == nil || m.weights == nil {
		return nil, errors.New("model not loaded")
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	x := mat.NewDense(len(vectors), len(features.Names), nil)
	for i, vec := range vectors {
		for j, v := range vec.Values() {
			if v == nil {
				x.Set(i, j, m.impute[j])
				continue
			}
			x.Set(i, j, *v)
		}
	}

	var y mat.Dense
	y.Mul(x, m.weights.T())

	out := make([]Estimate, len(vectors))
	for i := range out {
		out[i] = Estimate{
			Speed: y.At(i, 0) + m.intercepts[0],
			Glide: y.At(i, 1) + m.intercepts[1],
			Turn:  y.At(i, 2) + m.intercepts[2],
			Fade:  y.At(i, 3) + m.intercepts[3],
		}
	}
	return out, nil
}
