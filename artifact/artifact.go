// Package artifact implements offline, two-pass windowed artifact detection
// over multi-channel recordings: per-window time-domain features scored
// against a robust baseline, with contiguous bad-window segments merged out
// for reporting.
package artifact

import (
	"errors"
)

// ErrInvalidFs is returned when the sampling rate is not finite and positive.
var ErrInvalidFs = errors.New("artifact: fs_hz must be > 0")

// ErrEmptyRecording is returned when the input has zero channels or zero
// samples, or when the channel rows differ in length.
var ErrEmptyRecording = errors.New("artifact: recording is empty")

// ErrStepExceedsWindow is returned when step_seconds > window_seconds.
var ErrStepExceedsWindow = errors.New("artifact: step_seconds must be <= window_seconds")

// ErrWindowTooSmall is returned when the configured window is smaller than
// 2 samples.
var ErrWindowTooSmall = errors.New("artifact: window must be >= 2 samples")

// DetectionOptions configures Detect.
type DetectionOptions struct {
	WindowSeconds float64
	StepSeconds   float64

	// BaselineSeconds <= 0 uses the entire recording as the baseline.
	BaselineSeconds float64

	PtpZ      float64
	RmsZ      float64
	KurtosisZ float64

	MinBadChannels int
}

// ChannelStats holds one channel's robust baseline location/scale per
// feature.
type ChannelStats struct {
	PtpMedian      float64
	PtpScale       float64
	RmsMedian      float64
	RmsScale       float64
	KurtosisMedian float64
	KurtosisScale  float64
}

// ChannelMetrics holds one channel's raw features and robust z-scores for a
// single window.
type ChannelMetrics struct {
	Ptp      float64
	Rms      float64
	Kurtosis float64

	PtpZ      float64
	RmsZ      float64
	KurtosisZ float64

	Bad bool
}

// WindowResult is one analysis window's per-channel metrics and overall
// bad/good flag.
type WindowResult struct {
	TStartSec float64
	TEndSec   float64

	Channels []ChannelMetrics

	Bad            bool
	BadChannelCount int
}

// DetectionResult is the full output of Detect.
type DetectionResult struct {
	Options DetectionOptions

	ChannelNames   []string
	BaselineStats  []ChannelStats
	Windows        []WindowResult
	TotalBadWindows int
}

// Segment is a contiguous bad-window region formed by merging
// overlapping/adjacent bad windows.
type Segment struct {
	TStartSec float64
	TEndSec   float64

	FirstWindow int
	LastWindow  int

	WindowCount     int
	MaxBadChannels  int
	BadWindowsPerChannel []int
}
