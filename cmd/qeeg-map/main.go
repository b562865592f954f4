// Command qeeg-map renders the offline brain-map pipeline: recording ->
// per-channel Welch PSD -> band integrator -> optional relative/log10
// transforms -> optional z-score vs a reference -> spherical-spline (or
// IDW) topomap grid per band, written as CSV (rendering to an image is an
// external adapter, out of scope here).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/qeeg-core/bands"
	"github.com/cwbudde/qeeg-core/internal/cliio"
	"github.com/cwbudde/qeeg-core/reference"
	"github.com/cwbudde/qeeg-core/recording"
	"github.com/cwbudde/qeeg-core/spectral"
	"github.com/cwbudde/qeeg-core/topomap"
)

func main() {
	inputPath := flag.String("input", "", "Input recording CSV path")
	montagePath := flag.String("montage", "", "Montage CSV path")
	bandSpec := flag.String("bands", "delta:0.5-4,theta:4-8,alpha:8-13,beta:13-30,gamma:30-80", "Band spec string (name:min-max,...)")
	nperseg := flag.Int("nperseg", 0, "Welch segment length in samples (0 = whole recording)")
	overlap := flag.Float64("overlap", 0.5, "Welch segment overlap fraction [0,1)")
	relative := flag.Bool("relative", false, "Convert band values to relative fractions")
	relMin := flag.Float64("relative-min-hz", 0, "Relative-power normalization range min (0 = band span)")
	relMax := flag.Float64("relative-max-hz", 0, "Relative-power normalization range max (0 = band span)")
	log10 := flag.Bool("log10", false, "Apply log10 to band values")
	refPath := flag.String("reference", "", "Optional reference CSV for z-scoring")
	outDir := flag.String("out", "out", "Output directory")
	gridSize := flag.Int("grid-size", 64, "Topomap grid size (pixels per side)")
	method := flag.String("method", "spline", "Topomap interpolation method: spline or idw")
	flag.Parse()

	if *inputPath == "" || *montagePath == "" {
		fmt.Fprintln(os.Stderr, "qeeg-map: -input and -montage are required")
		os.Exit(1)
	}

	rec, err := cliio.ReadRecordingCSV(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: %v\n", err)
		os.Exit(1)
	}

	montageFile, err := os.Open(*montagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: montage: %v\n", err)
		os.Exit(1)
	}
	montage, err := recording.LoadMontageCSV(montageFile)
	montageFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: montage: %v\n", err)
		os.Exit(1)
	}

	bandList, err := bands.ParseSpec(*bandSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: %v\n", err)
		os.Exit(1)
	}

	segLen := *nperseg
	if segLen <= 0 {
		if len(rec.Samples) > 0 {
			segLen = len(rec.Samples[0])
		}
	}

	psds := make([]spectral.PSD, len(rec.Channels))
	for i, samples := range rec.Samples {
		psd, err := spectral.WelchPSD(samples, rec.FsHz, segLen, *overlap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-map: channel %q: %v\n", rec.Channels[i], err)
			os.Exit(1)
		}
		psds[i] = psd
	}

	m := spectral.BandMatrix(bandList, rec.Channels, psds)
	if *relative {
		lo, hi := *relMin, *relMax
		if hi <= lo {
			lo, hi = bandList[0].FMinHz, bandList[len(bandList)-1].FMaxHz
		}
		m.ApplyRelative(psds, lo, hi)
	}
	if *log10 {
		m.ApplyLog10()
	}

	if *refPath != "" {
		if err := applyReferenceZScore(&m, *refPath, *relative, *log10); err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-map: %v\n", err)
			os.Exit(1)
		}
	}

	bpPath := filepath.Join(*outDir, "bandpowers.csv")
	if err := cliio.WriteBandpowerMatrixCSV(bpPath, m); err != nil {
		fmt.Fprintf(os.Stderr, "qeeg-map: %v\n", err)
		os.Exit(1)
	}

	topoOpt := topomap.DefaultOptions()
	topoOpt.Size = *gridSize
	if *method == "idw" {
		topoOpt.Method = topomap.MethodIDW
	} else {
		topoOpt.Method = topomap.MethodSphericalSpline
	}

	written := 0
	for bi, b := range m.Bands {
		grid, err := topomap.BuildGrid(m.Channels, m.Values[bi], montage, topoOpt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-map: band %q: %v\n", b.Name, err)
			continue
		}
		gridPath := filepath.Join(*outDir, fmt.Sprintf("grid_%s.csv", b.Name))
		if err := cliio.WriteGridCSV(gridPath, grid); err != nil {
			fmt.Fprintf(os.Stderr, "qeeg-map: band %q: %v\n", b.Name, err)
			continue
		}
		written++
	}

	fmt.Printf("qeeg-map: wrote %s and %d grid file(s) to %s\n", bpPath, written, *outDir)
}

func applyReferenceZScore(m *spectral.BandpowerMatrix, refPath string, relative, log10Applied bool) error {
	f, err := os.Open(refPath)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	defer f.Close()
	refFile, err := reference.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}

	callerMeta := reference.Metadata{RelativePower: relative, Log10Power: log10Applied}
	for bi, b := range m.Bands {
		row := m.Values[bi]
		for ci, ch := range m.Channels {
			if ci >= len(row) {
				continue
			}
			z, err := refFile.ZScore(ch, b.Name, row[ci], callerMeta)
			if err != nil {
				continue
			}
			row[ci] = z
		}
	}
	return nil
}
