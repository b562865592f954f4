// Package recording defines the in-memory EEG recording structure,
// channel-name normalization, and montage/geometry types shared across the
// analysis pipeline.
package recording

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Annotation is a single labeled event on a recording's timeline.
type Annotation struct {
	OnsetSec    float64
	DurationSec float64
	Label       string
}

// Recording is an ordered set of equal-length, equal-rate channel arrays.
type Recording struct {
	FsHz     float64
	Channels []string
	Samples  [][]float32
	Events   []Annotation
}

// Validate checks the Recording invariants: a positive sampling rate and
// identical channel/array lengths.
func (r Recording) Validate() error {
	if r.FsHz <= 0 {
		return fmt.Errorf("recording: fs_hz must be > 0, got %v", r.FsHz)
	}
	if len(r.Channels) != len(r.Samples) {
		return fmt.Errorf("recording: %d channel names but %d sample arrays", len(r.Channels), len(r.Samples))
	}
	if len(r.Samples) == 0 {
		return fmt.Errorf("recording: no channels")
	}
	n := len(r.Samples[0])
	for i, row := range r.Samples {
		if len(row) != n {
			return fmt.Errorf("recording: channel %q has length %d, want %d", r.Channels[i], len(row), n)
		}
	}
	return nil
}

var (
	punctRe = regexp.MustCompile(`[\s_\.\-]+`)
	eegPrefixRe = regexp.MustCompile(`^eeg`)
	refSuffixRe = regexp.MustCompile(`ref$`)
)

var legacyAliases = map[string]string{
	"t3": "t7",
	"t4": "t8",
	"t5": "p7",
	"t6": "p8",
}

// NormalizeChannelName canonicalizes a channel name for identity
// comparison: lowercase, whitespace/punctuation collapsed, leading "EEG"
// and trailing "-REF"-style modality/reference affixes stripped, and
// legacy 10-20 aliases (T3/T4/T5/T6) mapped to their modern equivalents.
func NormalizeChannelName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = punctRe.ReplaceAllString(s, "")
	s = eegPrefixRe.ReplaceAllString(s, "")
	s = refSuffixRe.ReplaceAllString(s, "")
	if alias, ok := legacyAliases[s]; ok {
		s = alias
	}
	return s
}

// Point2D is a 2D montage coordinate on the unit disk.
type Point2D struct {
	X, Y float64
}

// Point3D is a 3D unit-sphere coordinate.
type Point3D struct {
	X, Y, Z float64
}

// ToSphere projects a 2D montage point on the unit disk onto the unit
// sphere's upper hemisphere (z = sqrt(1-x^2-y^2)), clamping points outside
// the disk to its edge.
func (p Point2D) ToSphere() Point3D {
	x, y := p.X, p.Y
	r2 := x*x + y*y
	if r2 > 1 {
		r := math.Sqrt(r2)
		if r > 0 {
			x /= r
			y /= r
		}
		r2 = 1
	}
	z := math.Sqrt(math.Max(0, 1-r2))
	return Point3D{X: x, Y: y, Z: z}
}

// Montage maps normalized channel names to 2D scalp coordinates.
type Montage map[string]Point2D
