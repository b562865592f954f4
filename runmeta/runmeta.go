// Package runmeta reads qeeg *_run_meta.json files: a minimal, stable
// top-level schema written by the tooling layer and consumed by
// downstream chaining (finding a prior tool's outputs, following nested
// run-meta manifests). It also resolves the PATH#SELECTOR input syntax
// tools accept for chaining.
package runmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Summary is the set of fields extracted from a run-meta JSON file.
// Missing keys are left as their zero value (best-effort, matching the
// original's "missing keys remain empty" contract).
type Summary struct {
	Tool           string
	InputPath      string
	TimestampLocal string
	TimestampUTC   string
	Version        string // prefers QeegVersion, falls back to Version
	GitDescribe    string
	BuildType      string
	Compiler       string
	CppStandard    string
	Outputs        []string
}

// topLevel captures only the top-level keys of interest; nested objects
// with colliding key names are deliberately not unmarshaled into this
// struct, giving top-level-only key scoping for free via encoding/json
// rather than a hand-rolled scanner.
type topLevel struct {
	Tool            string       `json:"Tool"`
	InputPath       *string      `json:"InputPath"`
	InputPathLegacy string       `json:"input_path"`
	TimestampLocal  string       `json:"TimestampLocal"`
	TimestampUTC    string       `json:"TimestampUTC"`
	QeegVersion     string       `json:"QeegVersion"`
	VersionLegacy   string       `json:"Version"`
	GitDescribe     string       `json:"GitDescribe"`
	BuildType       string       `json:"BuildType"`
	Compiler        string       `json:"Compiler"`
	CppStandard     string       `json:"CppStandard"`
	Outputs         []string     `json:"Outputs"`
	Input           *nestedInput `json:"Input"`
}

type nestedInput struct {
	Path string `json:"Path"`
}

// ReadSummary reads a run-meta JSON file and extracts its known fields.
// Best-effort: if the file cannot be read or parsed, returns an error; if
// individual keys are simply absent, their fields are left empty.
func ReadSummary(jsonPath string) (Summary, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return Summary{}, fmt.Errorf("runmeta: read %s: %w", jsonPath, err)
	}
	var tl topLevel
	if err := json.Unmarshal(b, &tl); err != nil {
		return Summary{}, fmt.Errorf("runmeta: parse %s: %w", jsonPath, err)
	}

	s := Summary{
		Tool:           tl.Tool,
		TimestampLocal: tl.TimestampLocal,
		TimestampUTC:   tl.TimestampUTC,
		GitDescribe:    tl.GitDescribe,
		BuildType:      tl.BuildType,
		Compiler:       tl.Compiler,
		CppStandard:    tl.CppStandard,
		Outputs:        sanitizeOutputs(tl.Outputs),
	}

	if tl.QeegVersion != "" {
		s.Version = tl.QeegVersion
	} else {
		s.Version = tl.VersionLegacy
	}

	switch {
	case tl.InputPath != nil:
		s.InputPath = *tl.InputPath
	case tl.InputPathLegacy != "":
		s.InputPath = tl.InputPathLegacy
	case tl.Input != nil:
		s.InputPath = tl.Input.Path
	}

	return s, nil
}

// ReadOutputs reads just the sanitized "Outputs" array from a run-meta
// JSON file. Returns an empty slice (not an error) if the file can't be
// read/parsed or the key is absent, matching the original's best-effort
// contract for this accessor.
func ReadOutputs(jsonPath string) []string {
	s, err := ReadSummary(jsonPath)
	if err != nil {
		return nil
	}
	return s.Outputs
}

// sanitizeOutputs drops entries that escape the run directory (".."
// segments), look absolute or drive-prefixed, or contain an embedded NUL
// byte, and normalizes remaining path separators to "/".
func sanitizeOutputs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if clean, ok := sanitizeOutputPath(o); ok {
			out = append(out, clean)
		}
	}
	return out
}

func sanitizeOutputPath(p string) (string, bool) {
	if strings.ContainsRune(p, 0) {
		return "", false
	}
	normalized := strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(normalized, "/") {
		return "", false
	}
	if isDrivePrefixed(normalized) {
		return "", false
	}
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return normalized, true
}

// isDrivePrefixed reports whether p looks like a Windows drive-letter
// path, e.g. "C:/foo" or "c:\\foo".
func isDrivePrefixed(normalized string) bool {
	if len(normalized) < 2 {
		return false
	}
	c := normalized[0]
	isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return isLetter && normalized[1] == ':'
}
