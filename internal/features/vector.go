package features

import (
	"strconv"

	"discflight/internal/store"
)

// Names lists the model inputs in the order Values returns them.
var Names = []string{
	"diameter",
	"height",
	"rim_depth",
	"inside_rim_diameter",
	"rim_depth_diameter_ratio",
	"rim_config",
}

// FeatureVector holds the six model inputs derived from a disc. A nil field
// means the raw value could not be read as a number.
type FeatureVector struct {
	Diameter              *float64
	Height                *float64
	RimDepth              *float64
	InsideRimDiameter     *float64
	RimDepthDiameterRatio *float64
	RimConfig             *float64
}

// Values returns the fields in Names order.
func (v FeatureVector) Values() []*float64 {
	return []*float64{v.Diameter, v.Height, v.RimDepth, v.InsideRimDiameter, v.RimDepthDiameterRatio, v.RimConfig}
}

// FromDisc builds a vector from the disc's raw strings. Each field is handled
// independently; the names of fields left unset are returned for logging.
func FromDisc(d store.Disc) (FeatureVector, []string) {
	var missing []string
	read := func(name, raw string) *float64 {
		v, ok := parse(raw)
		if !ok {
			missing = append(missing, name)
			return nil
		}
		return &v
	}
	vec := FeatureVector{
		Diameter:              read("diameter", d.Diameter),
		Height:                read("height", d.Height),
		RimDepth:              read("rim_depth", d.RimDepth),
		InsideRimDiameter:     read("inside_rim_diameter", d.InsideRimDiameter),
		RimDepthDiameterRatio: read("rim_depth_diameter_ratio", d.RimDepthDiameterRatio),
		RimConfig:             read("rim_config", d.RimConfig),
	}
	return vec, missing
}

func parse(raw string) (float64, bool) {
	normalized, ok := Normalize(raw)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
