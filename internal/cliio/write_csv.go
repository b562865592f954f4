package cliio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/cwbudde/qeeg-core/spectral"
	"github.com/cwbudde/qeeg-core/topomap"
)

// WriteBandpowerMatrixCSV writes m as "band,channel,value" rows to path.
func WriteBandpowerMatrixCSV(path string, m spectral.BandpowerMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cliio: create %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, "band,channel,value")
	for bi, b := range m.Bands {
		row := m.Values[bi]
		for ci, ch := range m.Channels {
			if ci >= len(row) {
				continue
			}
			fmt.Fprintf(bw, "%s,%s,%s\n", b.Name, ch, formatFloat(row[ci]))
		}
	}
	return bw.Flush()
}

// WriteGridCSV writes a topomap.Grid as one row per pixel row, comma
// separated, with NaN pixels written as the literal "nan".
func WriteGridCSV(path string, g topomap.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cliio: create %s: %w", path, err)
	}
	defer f.Close()
	return writeGridCSVTo(f, g)
}

func writeGridCSVTo(w io.Writer, g topomap.Grid) error {
	bw := bufio.NewWriter(w)
	for _, row := range g.Values {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(bw, ",")
			}
			fmt.Fprint(bw, formatFloat(v))
		}
		fmt.Fprint(bw, "\n")
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
