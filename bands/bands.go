// Package bands defines named frequency bands and the textual band-spec
// format ("name:min-max,...") used to configure bandpower pipelines.
package bands

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Band is a named frequency range in Hz.
type Band struct {
	Name   string
	FMinHz float64
	FMaxHz float64
}

// ParseSpec parses a comma-separated "name:min-max" band list, e.g.
// "delta:0.5-4,theta:4-8,alpha:8-13". Entries are returned in the order
// they appear.
func ParseSpec(spec string) ([]Band, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("bands: empty spec")
	}
	parts := strings.Split(spec, ",")
	out := make([]Band, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameRange := strings.SplitN(part, ":", 2)
		if len(nameRange) != 2 {
			return nil, fmt.Errorf("bands: invalid entry %q, expected name:min-max", part)
		}
		name := strings.TrimSpace(nameRange[0])
		if name == "" {
			return nil, fmt.Errorf("bands: invalid entry %q, missing name", part)
		}
		rng := strings.SplitN(nameRange[1], "-", 2)
		if len(rng) != 2 {
			return nil, fmt.Errorf("bands: invalid range in entry %q", part)
		}
		fmin, err := strconv.ParseFloat(strings.TrimSpace(rng[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bands: invalid min in entry %q: %w", part, err)
		}
		fmax, err := strconv.ParseFloat(strings.TrimSpace(rng[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bands: invalid max in entry %q: %w", part, err)
		}
		if !(fmax > fmin) {
			return nil, fmt.Errorf("bands: entry %q has max <= min", part)
		}
		out = append(out, Band{Name: name, FMinHz: fmin, FMaxHz: fmax})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("bands: spec %q yielded no bands", spec)
	}
	return out, nil
}

// ToSpecString serializes bandsList back to "name:min-max,..." form.
func ToSpecString(bandsList []Band) string {
	parts := make([]string, len(bandsList))
	for i, b := range bandsList {
		parts[i] = fmt.Sprintf("%s:%s-%s", b.Name, trimFloat(b.FMinHz), trimFloat(b.FMaxHz))
	}
	return strings.Join(parts, ",")
}

func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return s
}

// IndividualizedBandsOptions configures IndividualizedBandsFromIAF.
type IndividualizedBandsOptions struct {
	DeltaMinHz               float64
	BetaMaxHz                float64
	GammaMaxHz               float64
	DeltaThetaSplitBelowIAF  float64
	ThetaAlphaSplitBelowIAF  float64
	AlphaBetaSplitAboveIAF   float64
}

// DefaultIndividualizedBandsOptions returns the standard delta-6/theta-2/
// alpha+2/beta-max/gamma-max layout.
func DefaultIndividualizedBandsOptions() IndividualizedBandsOptions {
	return IndividualizedBandsOptions{
		DeltaMinHz:              0.5,
		BetaMaxHz:               30.0,
		GammaMaxHz:              80.0,
		DeltaThetaSplitBelowIAF: 6.0,
		ThetaAlphaSplitBelowIAF: 2.0,
		AlphaBetaSplitAboveIAF:  2.0,
	}
}

// IndividualizedBandsFromIAF synthesizes a delta/theta/alpha/beta/gamma
// band layout centered on the given individual alpha frequency:
//
//	delta: [delta_min, iaf-6]
//	theta: [iaf-6, iaf-2]
//	alpha: [iaf-2, iaf+2]
//	beta : [iaf+2, beta_max]
//	gamma: [beta_max, gamma_max]
func IndividualizedBandsFromIAF(iafHz float64, opt IndividualizedBandsOptions) ([]Band, error) {
	if !(iafHz > 0) || math.IsInf(iafHz, 0) {
		return nil, fmt.Errorf("bands: iaf_hz must be finite and > 0, got %v", iafHz)
	}
	dmin := opt.DeltaMinHz
	dmax := math.Max(dmin, iafHz-opt.DeltaThetaSplitBelowIAF)
	tmax := math.Max(dmax, iafHz-opt.ThetaAlphaSplitBelowIAF)
	amax := math.Max(tmax, iafHz+opt.AlphaBetaSplitAboveIAF)
	bmax := math.Max(amax, opt.BetaMaxHz)
	gmax := math.Max(bmax, opt.GammaMaxHz)

	return []Band{
		{Name: "delta", FMinHz: dmin, FMaxHz: dmax},
		{Name: "theta", FMinHz: dmax, FMaxHz: tmax},
		{Name: "alpha", FMinHz: tmax, FMaxHz: amax},
		{Name: "beta", FMinHz: amax, FMaxHz: bmax},
		{Name: "gamma", FMinHz: bmax, FMaxHz: gmax},
	}, nil
}
