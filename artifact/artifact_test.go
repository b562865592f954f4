package artifact

import "testing"

func constSignal(n int, v float32) []float32 {
	x := make([]float32, n)
	for i := range x {
		x[i] = v
	}
	return x
}

func TestDetectBaselineVsSpike(t *testing.T) {
	const fs = 100.0
	quiet := make([]float32, int(5*fs))
	for i := range quiet {
		if i%2 == 0 {
			quiet[i] = 0.01
		} else {
			quiet[i] = -0.01
		}
	}
	spike := constSignal(int(1*fs), 10)
	row := append(append([]float32{}, quiet...), spike...)

	opt := DetectionOptions{
		WindowSeconds:   0.5,
		StepSeconds:     0.5,
		BaselineSeconds: 4,
		PtpZ:            5,
		RmsZ:            5,
		KurtosisZ:       0,
		MinBadChannels:  1,
	}
	res, err := Detect(fs, []string{"ch0"}, [][]float32{row}, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalBadWindows == 0 {
		t.Fatalf("expected at least one bad window during the spike")
	}
	lastWindow := res.Windows[len(res.Windows)-1]
	if !lastWindow.Bad {
		t.Errorf("expected the final (spike) window to be flagged bad")
	}
	firstWindow := res.Windows[0]
	if firstWindow.Bad {
		t.Errorf("expected the first (quiet baseline) window to not be flagged bad")
	}
}

func TestDetectRejectsStepGreaterThanWindow(t *testing.T) {
	row := constSignal(1000, 1)
	_, err := Detect(100, []string{"ch0"}, [][]float32{row}, DetectionOptions{
		WindowSeconds: 0.5, StepSeconds: 1.0, MinBadChannels: 1,
	})
	if err != ErrStepExceedsWindow {
		t.Fatalf("expected ErrStepExceedsWindow, got %v", err)
	}
}

func TestDetectRejectsEmptyRecording(t *testing.T) {
	_, err := Detect(100, nil, nil, DetectionOptions{WindowSeconds: 1, StepSeconds: 1})
	if err != ErrEmptyRecording {
		t.Fatalf("expected ErrEmptyRecording, got %v", err)
	}
}

func TestBadSegmentsMergesAdjacentWindows(t *testing.T) {
	res := DetectionResult{
		ChannelNames: []string{"ch0"},
		Windows: []WindowResult{
			{TStartSec: 0, TEndSec: 1, Bad: true, BadChannelCount: 1, Channels: []ChannelMetrics{{Bad: true}}},
			{TStartSec: 1, TEndSec: 2, Bad: true, BadChannelCount: 1, Channels: []ChannelMetrics{{Bad: true}}},
			{TStartSec: 5, TEndSec: 6, Bad: true, BadChannelCount: 1, Channels: []ChannelMetrics{{Bad: true}}},
		},
	}
	segs := BadSegments(res, 0.0)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].WindowCount != 2 {
		t.Errorf("expected first segment to merge 2 windows, got %d", segs[0].WindowCount)
	}
	if segs[1].WindowCount != 1 {
		t.Errorf("expected second segment to have 1 window, got %d", segs[1].WindowCount)
	}
}

func TestBadSegmentsRespectsMergeGap(t *testing.T) {
	res := DetectionResult{
		ChannelNames: []string{"ch0"},
		Windows: []WindowResult{
			{TStartSec: 0, TEndSec: 1, Bad: true, BadChannelCount: 1, Channels: []ChannelMetrics{{Bad: true}}},
			{TStartSec: 1.4, TEndSec: 2.4, Bad: true, BadChannelCount: 1, Channels: []ChannelMetrics{{Bad: true}}},
		},
	}
	noMerge := BadSegments(res, 0.0)
	if len(noMerge) != 2 {
		t.Fatalf("expected no merge with zero gap, got %d segments", len(noMerge))
	}
	merged := BadSegments(res, 0.5)
	if len(merged) != 1 {
		t.Fatalf("expected merge with 0.5s gap, got %d segments", len(merged))
	}
}
