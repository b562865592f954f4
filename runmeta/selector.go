package runmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxNestedDepth bounds how many levels of nested run-meta "Outputs"
// listing other *_run_meta.json files will be followed.
const maxNestedDepth = 8

// ParseSelector splits a "PATH#SELECTOR" input spec into its path and
// optional selector. An empty selector means "no disambiguation needed".
func ParseSelector(spec string) (path, selector string, err error) {
	spec = strings.TrimSpace(spec)
	idx := strings.LastIndexByte(spec, '#')
	if idx < 0 {
		return spec, "", nil
	}
	path = strings.TrimSpace(spec[:idx])
	selector = strings.TrimSpace(spec[idx+1:])
	if selector == "" {
		return "", "", fmt.Errorf("runmeta: empty selector after '#' in %q", spec)
	}
	return path, selector, nil
}

// hasGlobChars reports whether pattern contains '*' or '?'.
func hasGlobChars(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// globMatch is a case-sensitive iterative wildcard matcher supporting '*'
// (any sequence, including empty) and '?' (exactly one character). Callers
// should lower-case both pattern and text for case-insensitive matching.
func globMatch(pattern, text string) bool {
	p, t := 0, 0
	star := -1
	match := 0

	for t < len(text) {
		if p < len(pattern) && (pattern[p] == '?' || pattern[p] == text[t]) {
			p++
			t++
			continue
		}
		if p < len(pattern) && pattern[p] == '*' {
			star = p
			p++
			match = t
			continue
		}
		if star != -1 {
			p = star + 1
			match++
			t = match
			continue
		}
		return false
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchesSelector reports whether filename matches selector: exact match
// or substring match (case-insensitive) when selector has no glob
// characters, otherwise a case-insensitive glob match. An empty selector
// matches everything.
func matchesSelector(filename, selector string) bool {
	if selector == "" {
		return true
	}
	nameLower := strings.ToLower(filename)
	selLower := strings.ToLower(selector)
	if selLower == "" {
		return true
	}
	if hasGlobChars(selLower) {
		return globMatch(selLower, nameLower)
	}
	if nameLower == selLower {
		return true
	}
	return strings.Contains(nameLower, selLower)
}

// FilterBySelector keeps only the paths whose base filename matches
// selector.
func FilterBySelector(paths []string, selector string) []string {
	if selector == "" {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if matchesSelector(filepath.Base(p), selector) {
			out = append(out, p)
		}
	}
	return out
}

// isRunMetaPath reports whether p looks like a *_run_meta.json file.
func isRunMetaPath(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), "_run_meta.json")
}

// ResolveOutputs expands a run-meta file's Outputs array into absolute
// paths (relative to the run-meta file's directory), following any
// nested *_run_meta.json entries recursively up to maxNestedDepth with
// cycle protection via a visited-path set.
func ResolveOutputs(runMetaPath string) ([]string, error) {
	visited := make(map[string]bool)
	var out []string
	if err := gatherOutputsRecursive(runMetaPath, visited, &out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func gatherOutputsRecursive(runMetaPath string, visited map[string]bool, out *[]string, depth int) error {
	if depth > maxNestedDepth {
		return nil
	}
	abs, err := filepath.Abs(runMetaPath)
	if err != nil {
		abs = runMetaPath
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	summary, err := ReadSummary(runMetaPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	for _, rel := range summary.Outputs {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if isRunMetaPath(full) {
			if _, statErr := os.Stat(full); statErr == nil {
				if err := gatherOutputsRecursive(full, visited, out, depth+1); err != nil {
					return err
				}
				continue
			}
		}
		*out = append(*out, full)
	}
	return nil
}

// ResolveSelector resolves a "PATH#SELECTOR" input spec into a single
// concrete file path: PATH may be a direct file, a *_run_meta.json file
// (whose resolved Outputs are filtered by selector), or a directory
// (whose immediate entries are filtered by selector). Returns an error if
// zero or more than one candidate survives filtering.
func ResolveSelector(spec string) (string, error) {
	path, selector, err := ParseSelector(spec)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("runmeta: stat %s: %w", path, err)
	}

	var candidates []string
	switch {
	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return "", fmt.Errorf("runmeta: read dir %s: %w", path, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			candidates = append(candidates, filepath.Join(path, e.Name()))
		}
	case isRunMetaPath(path):
		candidates, err = ResolveOutputs(path)
		if err != nil {
			return "", err
		}
	default:
		if selector != "" && !matchesSelector(filepath.Base(path), selector) {
			return "", fmt.Errorf("runmeta: selector %q does not match file %s", selector, path)
		}
		return path, nil
	}

	candidates = FilterBySelector(candidates, selector)
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("runmeta: no candidates matched selector %q under %s", selector, path)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("runmeta: selector %q is ambiguous, matched %d candidates under %s", selector, len(candidates), path)
	}
}
