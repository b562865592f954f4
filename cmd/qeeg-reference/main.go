// Command qeeg-reference builds a per-(channel,band) bandpower reference
// from one or more recordings, accumulating through the same windowed
// Welch/bandpower pipeline the online engine uses, then writes the result
// as a reference CSV.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/qeeg-core/bands"
	"github.com/cwbudde/qeeg-core/internal/cliio"
	"github.com/cwbudde/qeeg-core/reference"
	"github.com/cwbudde/qeeg-core/ring"
)

func main() {
	inputsFlag := flag.String("inputs", "", "Comma-separated list of input recording CSV paths")
	bandSpec := flag.String("bands", "delta:0.5-4,theta:4-8,alpha:8-13,beta:13-30,gamma:30-80", "Band spec string")
	windowSeconds := flag.Float64("window-seconds", 2.0, "Ring window length in seconds")
	updateSeconds := flag.Float64("update-seconds", 1.0, "Frame emission period in seconds")
	chunkSamples := flag.Int("chunk-samples", 64, "Simulated input chunk size in samples")
	relative := flag.Bool("relative", false, "Accumulate relative band fractions instead of raw power")
	log10 := flag.Bool("log10", false, "Apply log10 before accumulating")
	robust := flag.Bool("robust", false, "Use reservoir-sampled robust median/scale instead of mean/std")
	reservoirCap := flag.Int("reservoir-cap", reference.DefaultReservoirCap, "Per-key reservoir sample cap (robust path only)")
	outPath := flag.String("out", "reference.csv", "Output reference CSV path")
	flag.Parse()

	if *inputsFlag == "" {
		fmt.Fprintln(os.Stderr, "qeeg-reference: -inputs is required")
		os.Exit(1)
	}

	bandList, err := bands.ParseSpec(*bandSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-reference: %v\n", err)
		os.Exit(1)
	}

	relMin, relMax := 0.0, 0.0
	if *relative {
		relMin, relMax = bandList[0].FMinHz, bandList[len(bandList)-1].FMaxHz
	}

	meta := reference.Metadata{
		Robust:         *robust,
		Log10Power:     *log10,
		RelativePower:  *relative,
		RelativeFMinHz: relMin,
		RelativeFMaxHz: relMax,
	}
	builder := reference.NewBuilder(meta, *reservoirCap)

	paths := strings.Split(*inputsFlag, ",")
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		rec, err := cliio.ReadRecordingCSV(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-reference: %v\n", err)
			os.Exit(1)
		}
		cfg := ring.BandpowerConfig{
			FsHz:          rec.FsHz,
			WindowSeconds: *windowSeconds,
			UpdateSeconds: *updateSeconds,
			Bands:         bandList,
			Relative:      *relative,
			RelativeMin:   relMin,
			RelativeMax:   relMax,
			Log10:         *log10,
		}
		if err := builder.BuildWindowed(rec.Channels, rec.Samples, cfg, *chunkSamples); err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-reference: %s: %v\n", p, err)
			os.Exit(1)
		}
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-reference: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	stats := builder.Stats()
	if err := reference.WriteCSV(f, stats, meta); err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-reference: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("qeeg-reference: wrote %d entries to %s\n", len(stats), *outPath)
}
