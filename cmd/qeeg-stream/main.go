// Command qeeg-stream drives the online neurofeedback dataflow: a
// recording is fed through a ring.BandpowerEngine and a
// ring.ArtifactGateEngine in fixed-size chunks (simulating a streaming
// sample source), smoothing the reward band through an
// robuststat.ExponentialSmoother and gating it through a
// robuststat.RewardShaper, vetoed by the artifact gate's bad-frame flag.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/qeeg-core/bands"
	"github.com/cwbudde/qeeg-core/internal/cliio"
	"github.com/cwbudde/qeeg-core/ring"
	"github.com/cwbudde/qeeg-core/robuststat"
)

func main() {
	inputPath := flag.String("input", "", "Input recording CSV path")
	bandSpec := flag.String("bands", "alpha:8-13", "Reward band spec string (single band)")
	windowSeconds := flag.Float64("window-seconds", 2.0, "Ring window length in seconds")
	updateSeconds := flag.Float64("update-seconds", 0.25, "Frame emission period in seconds")
	chunkSamples := flag.Int("chunk-samples", 32, "Simulated input chunk size in samples")
	baselineSeconds := flag.Float64("baseline-seconds", 30.0, "Artifact-gate baseline period in seconds")
	ptpThreshold := flag.Float64("ptp-threshold", 4.0, "Artifact-gate peak-to-peak robust-z threshold")
	rmsThreshold := flag.Float64("rms-threshold", 4.0, "Artifact-gate RMS robust-z threshold")
	kurtThreshold := flag.Float64("kurt-threshold", 4.0, "Artifact-gate excess-kurtosis robust-z threshold")
	minBadChannels := flag.Int("min-bad-channels", 1, "Minimum bad channels to flag a frame bad")
	smoothTauSeconds := flag.Float64("smooth-tau-seconds", 1.0, "Reward EMA time constant in seconds (<=0 disables)")
	dwellSeconds := flag.Float64("dwell-seconds", 1.0, "Reward gate dwell period in seconds")
	refractorySeconds := flag.Float64("refractory-seconds", 0.5, "Reward gate refractory period in seconds")
	rewardThreshold := flag.Float64("reward-threshold", 0.2, "Raw reward gate: band value must exceed this")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "qeeg-stream: -input is required")
		os.Exit(1)
	}

	rec, err := cliio.ReadRecordingCSV(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
		os.Exit(1)
	}

	bandList, err := bands.ParseSpec(*bandSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
		os.Exit(1)
	}

	bpEngine, err := ring.NewBandpowerEngine(rec.Channels, ring.BandpowerConfig{
		FsHz:          rec.FsHz,
		WindowSeconds: *windowSeconds,
		UpdateSeconds: *updateSeconds,
		Bands:         bandList,
		Relative:      true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
		os.Exit(1)
	}

	gateEngine, err := ring.NewArtifactGateEngine(rec.Channels, ring.ArtifactGateConfig{
		FsHz:            rec.FsHz,
		WindowSeconds:   *windowSeconds,
		UpdateSeconds:   *updateSeconds,
		BaselineSeconds: *baselineSeconds,
		PtpThreshold:    *ptpThreshold,
		RmsThreshold:    *rmsThreshold,
		KurtThreshold:   *kurtThreshold,
		MinBadChannels:  *minBadChannels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
		os.Exit(1)
	}

	smoother := robuststat.NewExponentialSmoother(*smoothTauSeconds)
	shaper := robuststat.NewRewardShaper(*dwellSeconds, *refractorySeconds)

	n := 0
	if len(rec.Samples) > 0 {
		n = len(rec.Samples[0])
	}

	fmt.Println("t_end_sec,band,mean_value,bad,reward_raw,reward_smoothed,reward_on")

	lastTEnd := 0.0
	for start := 0; start < n; start += *chunkSamples {
		end := start + *chunkSamples
		if end > n {
			end = n
		}
		block := make([][]float32, len(rec.Channels))
		for c, row := range rec.Samples {
			block[c] = row[start:end]
		}

		bpFrames, err := bpEngine.PushBlock(block)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
			os.Exit(1)
		}
		gateFrames, err := gateEngine.PushBlock(block)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-stream: %v\n", err)
			os.Exit(1)
		}
		badByT := make(map[float64]bool, len(gateFrames))
		for _, gf := range gateFrames {
			badByT[gf.TEndSec] = gf.Bad
		}

		for _, f := range bpFrames {
			meanVal := meanBandValue(f)
			bad := badByT[f.TEndSec]
			dt := f.TEndSec - lastTEnd
			lastTEnd = f.TEndSec

			smoothed := meanVal
			if smoother.TimeConstant() > 0 {
				smoothed = smoother.Update(meanVal, dt)
			}
			raw := !bad && smoothed > *rewardThreshold
			on := shaper.Update(raw, dt, f.TEndSec, bad)

			fmt.Printf("%.3f,%s,%.6f,%t,%t,%.6f,%t\n", f.TEndSec, f.Config.Bands[0].Name, meanVal, bad, raw, smoothed, on)
		}
	}
}

func meanBandValue(f ring.BandpowerFrame) float64 {
	if len(f.Matrix.Values) == 0 {
		return 0
	}
	row := f.Matrix.Values[0]
	if len(row) == 0 {
		return 0
	}
	var sum float64
	count := 0
	for _, v := range row {
		if v == v { // not NaN
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
