// Package cliio holds thin, tool-facing adapters around the core: a
// minimal ASCII/CSV recording reader and bandpower/grid CSV writers. These
// are the kind of format adapters spec.md treats as external collaborators,
// not core analysis.
package cliio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/qeeg-core/recording"
)

// ReadRecordingCSV reads a minimal ASCII/CSV recording: a required
// leading "# fs_hz=<value>" comment line, a header row of channel names,
// then one row per sample with one column per channel.
func ReadRecordingCSV(path string) (recording.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return recording.Recording{}, fmt.Errorf("cliio: open %s: %w", path, err)
	}
	defer f.Close()
	return parseRecordingCSV(f)
}

func parseRecordingCSV(r io.Reader) (recording.Recording, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var fsHz float64
	var channels []string
	var samples [][]float32
	haveHeader := false
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if v, ok := parseFsHzComment(line); ok {
				fsHz = v
			}
			continue
		}
		cols := strings.Split(line, ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if !haveHeader {
			haveHeader = true
			channels = cols
			samples = make([][]float32, len(channels))
			continue
		}
		if len(cols) != len(channels) {
			return recording.Recording{}, fmt.Errorf("cliio: line %d: expected %d columns, got %d", lineNo, len(channels), len(cols))
		}
		for i, c := range cols {
			v, err := strconv.ParseFloat(c, 32)
			if err != nil {
				return recording.Recording{}, fmt.Errorf("cliio: line %d: invalid sample %q: %w", lineNo, c, err)
			}
			samples[i] = append(samples[i], float32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return recording.Recording{}, err
	}
	if fsHz <= 0 {
		return recording.Recording{}, fmt.Errorf("cliio: missing or invalid '# fs_hz=...' header comment")
	}

	rec := recording.Recording{FsHz: fsHz, Channels: channels, Samples: samples}
	if err := rec.Validate(); err != nil {
		return recording.Recording{}, err
	}
	return rec, nil
}

func parseFsHzComment(line string) (float64, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	const prefix = "fs_hz="
	if !strings.HasPrefix(body, prefix) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(body[len(prefix):]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
