package artifact

import (
	"math"

	"github.com/cwbudde/qeeg-core/robuststat"
)

type rawFeatures struct {
	ptp, rms, kurt float64
}

func windowFeatures(x []float32) rawFeatures {
	n := len(x)
	if n == 0 {
		return rawFeatures{}
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
	m := sum / float64(n)
	e2 := sum2 / float64(n)
	e3 := sum3 / float64(n)
	e4 := sum4 / float64(n)

	variance := e2 - m*m
	if variance < 0 {
		variance = 0
	}
	rms := 0.0
	if e2 > 0 {
		rms = math.Sqrt(e2)
	}

	mu4 := e4 - 4*m*e3 + 6*m*m*e2 - 3*m*m*m*m
	kurt := 0.0
	if variance > 1e-20 {
		kurt = mu4/(variance*variance) - 3
	}
	return rawFeatures{ptp: maxV - minV, rms: rms, kurt: kurt}
}

// Detect runs the two-pass windowed artifact detector over a recording.
func Detect(fsHz float64, channels []string, samples [][]float32, opt DetectionOptions) (DetectionResult, error) {
	if !(fsHz > 0) || math.IsInf(fsHz, 0) {
		return DetectionResult{}, ErrInvalidFs
	}
	if len(channels) == 0 || len(samples) == 0 {
		return DetectionResult{}, ErrEmptyRecording
	}
	nSamples := len(samples[0])
	if nSamples == 0 {
		return DetectionResult{}, ErrEmptyRecording
	}
	for _, row := range samples {
		if len(row) != nSamples {
			return DetectionResult{}, ErrEmptyRecording
		}
	}
	if opt.StepSeconds > opt.WindowSeconds {
		return DetectionResult{}, ErrStepExceedsWindow
	}

	windowSamples := int(opt.WindowSeconds*fsHz + 0.5)
	stepSamples := int(opt.StepSeconds*fsHz + 0.5)
	if stepSamples < 1 {
		stepSamples = 1
	}
	if windowSamples < 2 {
		return DetectionResult{}, ErrWindowTooSmall
	}
	if opt.MinBadChannels < 1 {
		opt.MinBadChannels = 1
	}

	nch := len(channels)

	type windowFeat struct {
		start, end int
		feats      []rawFeatures
	}
	var windows []windowFeat
	for start := 0; start+windowSamples <= nSamples; start += stepSamples {
		end := start + windowSamples
		feats := make([]rawFeatures, nch)
		for c, row := range samples {
			feats[c] = windowFeatures(row[start:end])
		}
		windows = append(windows, windowFeat{start: start, end: end, feats: feats})
	}

	// Pass 1: baseline pooling.
	ptpPool := make([][]float64, nch)
	rmsPool := make([][]float64, nch)
	kurtPool := make([][]float64, nch)

	baselineSeconds := opt.BaselineSeconds
	anyBaselineWindow := false
	for _, w := range windows {
		tEnd := float64(w.end) / fsHz
		if baselineSeconds > 0 && tEnd > baselineSeconds {
			continue
		}
		anyBaselineWindow = true
		for c := 0; c < nch; c++ {
			ptpPool[c] = append(ptpPool[c], w.feats[c].ptp)
			rmsPool[c] = append(rmsPool[c], w.feats[c].rms)
			kurtPool[c] = append(kurtPool[c], w.feats[c].kurt)
		}
	}
	if !anyBaselineWindow {
		// Baseline selection yielded nothing: fall back to all windows.
		for c := 0; c < nch; c++ {
			ptpPool[c] = ptpPool[c][:0]
			rmsPool[c] = rmsPool[c][:0]
			kurtPool[c] = kurtPool[c][:0]
		}
		for _, w := range windows {
			for c := 0; c < nch; c++ {
				ptpPool[c] = append(ptpPool[c], w.feats[c].ptp)
				rmsPool[c] = append(rmsPool[c], w.feats[c].rms)
				kurtPool[c] = append(kurtPool[c], w.feats[c].kurt)
			}
		}
	}

	// Pass 2: baseline stats + per-window z-scores.
	baselineStats := make([]ChannelStats, nch)
	for c := 0; c < nch; c++ {
		baselineStats[c] = ChannelStats{
			PtpMedian:      medianOf(ptpPool[c]),
			PtpScale:       scaleOf(ptpPool[c]),
			RmsMedian:      medianOf(rmsPool[c]),
			RmsScale:       scaleOf(rmsPool[c]),
			KurtosisMedian: medianOf(kurtPool[c]),
			KurtosisScale:  scaleOf(kurtPool[c]),
		}
	}

	results := make([]WindowResult, len(windows))
	totalBad := 0
	for wi, w := range windows {
		wr := WindowResult{
			TStartSec: float64(w.start) / fsHz,
			TEndSec:   float64(w.end) / fsHz,
			Channels:  make([]ChannelMetrics, nch),
		}
		badCount := 0
		for c := 0; c < nch; c++ {
			f := w.feats[c]
			st := baselineStats[c]
			ptpZ := robustZ(f.ptp, st.PtpMedian, st.PtpScale)
			rmsZ := robustZ(f.rms, st.RmsMedian, st.RmsScale)
			kurtZ := robustZ(f.kurt, st.KurtosisMedian, st.KurtosisScale)

			bad := false
			if opt.PtpZ > 0 && absf(ptpZ) >= opt.PtpZ {
				bad = true
			}
			if opt.RmsZ > 0 && absf(rmsZ) >= opt.RmsZ {
				bad = true
			}
			if opt.KurtosisZ > 0 && absf(kurtZ) >= opt.KurtosisZ {
				bad = true
			}

			wr.Channels[c] = ChannelMetrics{
				Ptp: f.ptp, Rms: f.rms, Kurtosis: f.kurt,
				PtpZ: ptpZ, RmsZ: rmsZ, KurtosisZ: kurtZ,
				Bad: bad,
			}
			if bad {
				badCount++
			}
		}
		wr.BadChannelCount = badCount
		wr.Bad = badCount >= opt.MinBadChannels
		if wr.Bad {
			totalBad++
		}
		results[wi] = wr
	}

	return DetectionResult{
		Options:         opt,
		ChannelNames:    channels,
		BaselineStats:   baselineStats,
		Windows:         results,
		TotalBadWindows: totalBad,
	}, nil
}

func medianOf(v []float64) float64 {
	cp := append([]float64(nil), v...)
	return robuststat.MedianInPlace(cp)
}

func scaleOf(v []float64) float64 {
	med := medianOf(v)
	return robuststat.RobustScale(v, med)
}

func robustZ(value, median, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return (value - median) / scale
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
