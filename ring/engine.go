package ring

import (
	"fmt"

	"github.com/cwbudde/qeeg-core/bands"
	"github.com/cwbudde/qeeg-core/spectral"
)

// Frame is implemented by every online analysis frame emitted by an engine.
type Frame interface {
	TimestampSec() float64
}

// pushValidate checks the bulk-push contract shared by both engines:
// exactly nChannels rows, all of equal length.
func pushValidate(block [][]float32, nChannels int) (int, error) {
	if len(block) != nChannels {
		return 0, fmt.Errorf("ring: expected %d channel rows, got %d", nChannels, len(block))
	}
	if len(block) == 0 {
		return 0, nil
	}
	n := len(block[0])
	for i, row := range block {
		if len(row) != n {
			return 0, fmt.Errorf("ring: channel row %d has length %d, want %d", i, len(row), n)
		}
	}
	return n, nil
}

// BandpowerConfig snapshots the configuration a BandpowerEngine was built
// with, carried on every emitted frame so downstream code can interpret
// values without re-deriving options.
type BandpowerConfig struct {
	FsHz          float64
	WindowSeconds float64
	UpdateSeconds float64
	Bands         []bands.Band
	Relative      bool
	RelativeMin   float64
	RelativeMax   float64
	Log10         bool
	Nperseg       int
	Overlap       float64
}

// BandpowerFrame is emitted by BandpowerEngine.
type BandpowerFrame struct {
	TEndSec float64
	Matrix  spectral.BandpowerMatrix
	Config  BandpowerConfig
}

func (f BandpowerFrame) TimestampSec() float64 { return f.TEndSec }

// BandpowerEngine converts streaming multi-channel blocks into periodic
// Welch-PSD bandpower frames with fixed, chunk-independent latency.
type BandpowerEngine struct {
	channels []string
	rings    []*buffer
	sched    *scheduler
	cfg      BandpowerConfig
	scratch  []float32
}

// NewBandpowerEngine builds an engine for the given channel set.
func NewBandpowerEngine(channels []string, cfg BandpowerConfig) (*BandpowerEngine, error) {
	if cfg.FsHz <= 0 {
		return nil, fmt.Errorf("ring: fs_hz must be > 0")
	}
	windowSamples := windowSamplesFor(cfg.WindowSeconds, cfg.FsHz)
	updateSamples := updateSamplesFor(cfg.UpdateSeconds, cfg.FsHz)
	sched, err := newScheduler(windowSamples, updateSamples)
	if err != nil {
		return nil, err
	}
	rings := make([]*buffer, len(channels))
	for i := range rings {
		rings[i] = newBuffer(windowSamples)
	}
	if cfg.Nperseg <= 0 {
		cfg.Nperseg = windowSamples
	}
	if cfg.RelativeMax <= cfg.RelativeMin && len(cfg.Bands) > 0 {
		cfg.RelativeMin = cfg.Bands[0].FMinHz
		cfg.RelativeMax = cfg.Bands[len(cfg.Bands)-1].FMaxHz
	}
	return &BandpowerEngine{
		channels: channels,
		rings:    rings,
		sched:    sched,
		cfg:      cfg,
		scratch:  make([]float32, windowSamples),
	}, nil
}

// PushBlock feeds one block of samples (one row per channel, equal length)
// and returns every frame emitted as a result, in time order.
func (e *BandpowerEngine) PushBlock(block [][]float32) ([]BandpowerFrame, error) {
	n, err := pushValidate(block, len(e.channels))
	if err != nil {
		return nil, err
	}
	var frames []BandpowerFrame
	for i := 0; i < n; i++ {
		for c, row := range block {
			e.rings[c].push(row[i])
		}
		emits := e.sched.advance(1)
		for _, total := range emits {
			frames = append(frames, e.emit(total))
		}
	}
	return frames, nil
}

func (e *BandpowerEngine) emit(totalSamples int64) BandpowerFrame {
	psds := make([]spectral.PSD, len(e.channels))
	for c, r := range e.rings {
		r.snapshot(e.scratch)
		psd, err := spectral.WelchPSD(e.scratch, e.cfg.FsHz, e.cfg.Nperseg, e.cfg.Overlap)
		if err != nil {
			psds[c] = spectral.PSD{}
			continue
		}
		psds[c] = psd
	}
	m := spectral.BandMatrix(e.cfg.Bands, e.channels, psds)
	if e.cfg.Relative {
		m.ApplyRelative(psds, e.cfg.RelativeMin, e.cfg.RelativeMax)
	}
	if e.cfg.Log10 {
		m.ApplyLog10()
	}
	return BandpowerFrame{
		TEndSec: float64(totalSamples) / e.cfg.FsHz,
		Matrix:  m,
		Config:  e.cfg,
	}
}
