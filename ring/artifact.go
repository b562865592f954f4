package ring

import (
	"fmt"
	"math"

	"github.com/cwbudde/qeeg-core/robuststat"
)

// ArtifactGateConfig configures an ArtifactGateEngine.
type ArtifactGateConfig struct {
	FsHz           float64
	WindowSeconds  float64
	UpdateSeconds  float64
	BaselineSeconds float64 // <=0 disables baseline accumulation entirely

	PtpThreshold  float64 // <=0 disables this feature's gating
	RmsThreshold  float64
	KurtThreshold float64

	MinBadChannels int
}

// ArtifactFrame is emitted by ArtifactGateEngine.
type ArtifactFrame struct {
	TEndSec       float64
	BaselineReady bool
	Bad           bool
	ChannelBad    []bool
	PtpZ          []float64
	RmsZ          []float64
	KurtZ         []float64
}

func (f ArtifactFrame) TimestampSec() float64 { return f.TEndSec }

type channelFeaturePool struct {
	ptp  []float64
	rms  []float64
	kurt []float64
}

type robustFeatureStats struct {
	median float64
	scale  float64
}

// ArtifactGateEngine computes ptp/RMS/excess-kurtosis per channel per
// emission, builds a robust baseline from the recording's early portion,
// and flags frames whose robust z-scores exceed configured thresholds.
type ArtifactGateEngine struct {
	channels []string
	rings    []*buffer
	sched    *scheduler
	cfg      ArtifactGateConfig
	scratch  []float32

	pools         []channelFeaturePool
	baselineReady bool
	baselineDone  bool // becomes true once stats are built (even if baseline disabled)
	ptpStats      []robustFeatureStats
	rmsStats      []robustFeatureStats
	kurtStats     []robustFeatureStats
}

// NewArtifactGateEngine builds an engine for the given channel set.
func NewArtifactGateEngine(channels []string, cfg ArtifactGateConfig) (*ArtifactGateEngine, error) {
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
	pools := make([]channelFeaturePool, len(channels))
	for i := range rings {
		rings[i] = newBuffer(windowSamples)
	}
	return &ArtifactGateEngine{
		channels: channels,
		rings:    rings,
		sched:    sched,
		cfg:      cfg,
		scratch:  make([]float32, windowSamples),
		pools:    pools,
	}, nil
}

// PushBlock feeds one block of samples and returns every frame emitted, in
// time order.
func (e *ArtifactGateEngine) PushBlock(block [][]float32) ([]ArtifactFrame, error) {
	n, err := pushValidate(block, len(e.channels))
	if err != nil {
		return nil, err
	}
	var frames []ArtifactFrame
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

func windowFeatures(x []float32) (ptp, rms, kurt float64) {
	n := len(x)
	if n == 0 {
		return 0, 0, 0
	}
	minV, maxV := float64(x[0]), float64(x[0])
	var sum, sum2, sum3, sum4 float64
	for _, v := range x {
		fv := float64(v)
		if fv < minV {
			minV = fv
		}
		if fv > maxV {
			maxV = fv
		}
		sum += fv
		sum2 += fv * fv
		sum3 += fv * fv * fv
		sum4 += fv * fv * fv * fv
	}
	ptp = maxV - minV
	m := sum / float64(n)
	e2 := sum2 / float64(n)
	e3 := sum3 / float64(n)
	e4 := sum4 / float64(n)

	variance := e2 - m*m
	if variance < 0 {
		variance = 0
	}
	rms = math.Sqrt(e2)

	mu4 := e4 - 4*m*e3 + 6*m*m*e2 - 3*m*m*m*m
	if variance <= 1e-20 {
		kurt = 0
	} else {
		kurt = mu4/(variance*variance) - 3
	}
	return ptp, rms, kurt
}

func (e *ArtifactGateEngine) emit(totalSamples int64) ArtifactFrame {
	nch := len(e.channels)
	ptps := make([]float64, nch)
	rmss := make([]float64, nch)
	kurts := make([]float64, nch)

	for c, r := range e.rings {
		r.snapshot(e.scratch)
		p, rm, k := windowFeatures(e.scratch)
		ptps[c] = p
		rmss[c] = rm
		kurts[c] = k
	}

	tEnd := float64(totalSamples) / e.cfg.FsHz

	inBaselineWindow := e.cfg.BaselineSeconds > 0 && tEnd <= e.cfg.BaselineSeconds
	if !e.baselineDone {
		if inBaselineWindow {
			for c := range e.pools {
				e.pools[c].ptp = append(e.pools[c].ptp, ptps[c])
				e.pools[c].rms = append(e.pools[c].rms, rmss[c])
				e.pools[c].kurt = append(e.pools[c].kurt, kurts[c])
			}
		}
		baselineEnds := e.cfg.BaselineSeconds <= 0 || tEnd > e.cfg.BaselineSeconds
		if baselineEnds {
			e.buildBaselineStats()
			e.baselineDone = true
			e.baselineReady = true
			e.pools = nil
		}
	}

	frame := ArtifactFrame{
		TEndSec:       tEnd,
		BaselineReady: e.baselineReady,
		ChannelBad:    make([]bool, nch),
		PtpZ:          make([]float64, nch),
		RmsZ:          make([]float64, nch),
		KurtZ:         make([]float64, nch),
	}

	if !e.baselineReady {
		return frame
	}

	badCount := 0
	for c := 0; c < nch; c++ {
		pz := robustZ(ptps[c], e.ptpStats[c])
		rz := robustZ(rmss[c], e.rmsStats[c])
		kz := robustZ(kurts[c], e.kurtStats[c])
		frame.PtpZ[c] = pz
		frame.RmsZ[c] = rz
		frame.KurtZ[c] = kz

		bad := false
		if e.cfg.PtpThreshold > 0 && math.Abs(pz) >= e.cfg.PtpThreshold {
			bad = true
		}
		if e.cfg.RmsThreshold > 0 && math.Abs(rz) >= e.cfg.RmsThreshold {
			bad = true
		}
		if e.cfg.KurtThreshold > 0 && math.Abs(kz) >= e.cfg.KurtThreshold {
			bad = true
		}
		frame.ChannelBad[c] = bad
		if bad {
			badCount++
		}
	}
	frame.Bad = badCount >= e.cfg.MinBadChannels

	return frame
}

func robustZ(value float64, s robustFeatureStats) float64 {
	if s.scale <= 0 {
		return 0
	}
	return (value - s.median) / s.scale
}

func (e *ArtifactGateEngine) buildBaselineStats() {
	nch := len(e.channels)
	e.ptpStats = make([]robustFeatureStats, nch)
	e.rmsStats = make([]robustFeatureStats, nch)
	e.kurtStats = make([]robustFeatureStats, nch)
	for c := 0; c < nch; c++ {
		e.ptpStats[c] = statsFromPool(e.pools[c].ptp)
		e.rmsStats[c] = statsFromPool(e.pools[c].rms)
		e.kurtStats[c] = statsFromPool(e.pools[c].kurt)
	}
}

func statsFromPool(values []float64) robustFeatureStats {
	if len(values) == 0 {
		return robustFeatureStats{median: 0, scale: 1.0}
	}
	cp := append([]float64(nil), values...)
	med := robuststat.MedianInPlace(cp)
	scale := robuststat.RobustScale(values, med)
	return robustFeatureStats{median: med, scale: scale}
}
