package reference

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// File is the CSV-backed schema for a serialized reference: metadata on
// leading "#key=value" comment lines, then one "channel,band,center,spread,n"
// row per (channel,band) entry. Mirrors preset.File's optional/required
// field split, adapted from JSON keys to comment-line key=value pairs.
type File struct {
	Robust         *bool
	Log10Power     *bool
	RelativePower  *bool
	RelativeFMinHz *float64
	RelativeFMaxHz *float64
	Stats          []Stat
}

// WriteCSV serializes stats and meta to w in the reference CSV format.
func WriteCSV(w io.Writer, stats []Stat, meta Metadata) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#robust=%t\n", meta.Robust)
	fmt.Fprintf(bw, "#log10_power=%t\n", meta.Log10Power)
	fmt.Fprintf(bw, "#relative_power=%t\n", meta.RelativePower)
	if meta.RelativePower {
		fmt.Fprintf(bw, "#relative_fmin_hz=%s\n", formatFloat(meta.RelativeFMinHz))
		fmt.Fprintf(bw, "#relative_fmax_hz=%s\n", formatFloat(meta.RelativeFMaxHz))
	}
	for _, s := range stats {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%d\n", s.Channel, s.Band, formatFloat(s.Center), formatFloat(s.Spread), s.N)
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses a reference CSV produced by WriteCSV (or a compatible
// hand-written file): leading "#key=value" comment lines are parsed into
// File's optional metadata fields, then every non-comment, non-blank line
// is parsed as a "channel,band,center,spread,n" data row.
func ReadCSV(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	f := &File{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := applyMetaLine(f, line[1:]); err != nil {
				return nil, fmt.Errorf("reference: line %d: %w", lineNo, err)
			}
			continue
		}
		stat, err := parseDataRow(line)
		if err != nil {
			return nil, fmt.Errorf("reference: line %d: %w", lineNo, err)
		}
		f.Stats = append(f.Stats, stat)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if f.Robust == nil || f.Log10Power == nil || f.RelativePower == nil {
		return nil, fmt.Errorf("reference: missing required metadata key (need robust, log10_power, relative_power)")
	}
	if *f.RelativePower && (f.RelativeFMinHz == nil || f.RelativeFMaxHz == nil) {
		return nil, fmt.Errorf("reference: relative_power=true requires relative_fmin_hz and relative_fmax_hz")
	}
	return f, nil
}

func applyMetaLine(f *File, kv string) error {
	parts := strings.SplitN(kv, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed metadata comment %q, expected key=value", kv)
	}
	key := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])
	switch key {
	case "robust":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid robust value %q: %w", val, err)
		}
		f.Robust = &b
	case "log10_power":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid log10_power value %q: %w", val, err)
		}
		f.Log10Power = &b
	case "relative_power":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid relative_power value %q: %w", val, err)
		}
		f.RelativePower = &b
	case "relative_fmin_hz":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid relative_fmin_hz value %q: %w", val, err)
		}
		f.RelativeFMinHz = &v
	case "relative_fmax_hz":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid relative_fmax_hz value %q: %w", val, err)
		}
		f.RelativeFMaxHz = &v
	default:
		// Unknown metadata keys are ignored rather than rejected, so the
		// format can grow without breaking older readers.
	}
	return nil
}

func parseDataRow(line string) (Stat, error) {
	cols := strings.Split(line, ",")
	if len(cols) != 5 {
		return Stat{}, fmt.Errorf("expected 5 columns (channel,band,center,spread,n), got %d", len(cols))
	}
	center, err := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
	if err != nil {
		return Stat{}, fmt.Errorf("invalid center value %q: %w", cols[2], err)
	}
	spread, err := strconv.ParseFloat(strings.TrimSpace(cols[3]), 64)
	if err != nil {
		return Stat{}, fmt.Errorf("invalid spread value %q: %w", cols[3], err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(cols[4]))
	if err != nil {
		return Stat{}, fmt.Errorf("invalid n value %q: %w", cols[4], err)
	}
	return Stat{
		Channel: strings.TrimSpace(cols[0]),
		Band:    strings.TrimSpace(cols[1]),
		Center:  center,
		Spread:  spread,
		N:       n,
	}, nil
}

// ToMetadata extracts a Metadata value from a parsed File. Callers must
// have already confirmed the required fields are non-nil (ReadCSV
// guarantees this).
func (f *File) ToMetadata() Metadata {
	m := Metadata{}
	if f.Robust != nil {
		m.Robust = *f.Robust
	}
	if f.Log10Power != nil {
		m.Log10Power = *f.Log10Power
	}
	if f.RelativePower != nil {
		m.RelativePower = *f.RelativePower
	}
	if f.RelativeFMinHz != nil {
		m.RelativeFMinHz = *f.RelativeFMinHz
	}
	if f.RelativeFMaxHz != nil {
		m.RelativeFMaxHz = *f.RelativeFMaxHz
	}
	return m
}

// ZScore computes (value - center) / spread for the entry matching
// (channel, band), returning an error if the entry is absent or if
// callerMeta doesn't match the metadata the reference was built with
// (the spec.md §6 "refuses silent scale mismatches" requirement).
func (f *File) ZScore(channel, band string, value float64, callerMeta Metadata) (float64, error) {
	meta := f.ToMetadata()
	if meta.Robust != callerMeta.Robust || meta.Log10Power != callerMeta.Log10Power || meta.RelativePower != callerMeta.RelativePower {
		return 0, fmt.Errorf("reference: caller preprocessing options do not match reference metadata (robust=%v/%v log10=%v/%v relative=%v/%v)",
			callerMeta.Robust, meta.Robust, callerMeta.Log10Power, meta.Log10Power, callerMeta.RelativePower, meta.RelativePower)
	}
	for _, s := range f.Stats {
		if s.Channel == channel && s.Band == band {
			spread := s.Spread
			if spread <= 0 {
				spread = 1.0
			}
			return (value - s.Center) / spread, nil
		}
	}
	return 0, fmt.Errorf("reference: no entry for channel %q band %q", channel, band)
}
