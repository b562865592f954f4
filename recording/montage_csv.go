package recording

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadMontageCSV reads a montage table: UTF-8 text with an optional
// "name,x,y" header, "#"-prefixed comment lines, comma or semicolon
// delimiters, and coordinates in the unit disk. Channel names are stored
// normalized via NormalizeChannelName so lookups during topomap rendering
// don't need to re-normalize.
func LoadMontageCSV(r io.Reader) (Montage, error) {
	sc := bufio.NewScanner(r)
	m := make(Montage)
	lineNo := 0
	headerSkipped := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		delim := ","
		if strings.Contains(line, ";") && !strings.Contains(line, ",") {
			delim = ";"
		}
		cols := splitAndTrim(line, delim)
		if !headerSkipped {
			headerSkipped = true
			if looksLikeHeader(cols) {
				continue
			}
		}
		if len(cols) < 3 {
			return nil, fmt.Errorf("recording: montage line %d: expected name,x,y, got %q", lineNo, line)
		}
		name := NormalizeChannelName(cols[0])
		if name == "" {
			return nil, fmt.Errorf("recording: montage line %d: empty channel name", lineNo)
		}
		x, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return nil, fmt.Errorf("recording: montage line %d: invalid x %q: %w", lineNo, cols[1], err)
		}
		y, err := strconv.ParseFloat(cols[2], 64)
		if err != nil {
			return nil, fmt.Errorf("recording: montage line %d: invalid y %q: %w", lineNo, cols[2], err)
		}
		m[name] = Point2D{X: x, Y: y}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("recording: montage contained no channel entries")
	}
	return m, nil
}

func splitAndTrim(line, delim string) []string {
	parts := strings.Split(line, delim)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// looksLikeHeader reports whether the first data-row's coordinate columns
// fail to parse as numbers, which is how we distinguish an optional
// "name,x,y" header line from a real data row.
func looksLikeHeader(cols []string) bool {
	if len(cols) < 3 {
		return false
	}
	if _, err := strconv.ParseFloat(cols[1], 64); err != nil {
		return true
	}
	if _, err := strconv.ParseFloat(cols[2], 64); err != nil {
		return true
	}
	return false
}
