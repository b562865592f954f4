package runmeta

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestReadSummaryPrefersQeegVersion(t *testing.T) {
	dir := t.TempDir()
	p := writeJSON(t, dir, "x_run_meta.json", map[string]any{
		"Tool":        "qeeg_map_cli",
		"QeegVersion": "2.0",
		"Version":     "1.0",
		"Outputs":     []string{"a.csv", "b.csv"},
	})
	s, err := ReadSummary(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0 (QeegVersion should win over legacy Version)", s.Version)
	}
	if s.Tool != "qeeg_map_cli" {
		t.Errorf("Tool = %q", s.Tool)
	}
	if len(s.Outputs) != 2 {
		t.Errorf("Outputs = %v, want 2 entries", s.Outputs)
	}
}

func TestReadSummaryInputPathFallbackChain(t *testing.T) {
	dir := t.TempDir()

	p1 := writeJSON(t, dir, "a_run_meta.json", map[string]any{"InputPath": "top.edf"})
	s1, _ := ReadSummary(p1)
	if s1.InputPath != "top.edf" {
		t.Errorf("expected top-level InputPath to win, got %q", s1.InputPath)
	}

	p2 := writeJSON(t, dir, "b_run_meta.json", map[string]any{"input_path": "legacy.edf"})
	s2, _ := ReadSummary(p2)
	if s2.InputPath != "legacy.edf" {
		t.Errorf("expected legacy input_path fallback, got %q", s2.InputPath)
	}

	p3 := writeJSON(t, dir, "c_run_meta.json", map[string]any{
		"Input": map[string]any{"Path": "nested.edf"},
	})
	s3, _ := ReadSummary(p3)
	if s3.InputPath != "nested.edf" {
		t.Errorf("expected nested Input.Path fallback, got %q", s3.InputPath)
	}
}

func TestSanitizeOutputsDropsEscapingAndAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	p := writeJSON(t, dir, "x_run_meta.json", map[string]any{
		"Outputs": []string{
			"good.csv",
			"../escape.csv",
			"/abs/path.csv",
			"C:/windows/path.csv",
			"sub/dir/nested.csv",
			"back\\slash.csv",
		},
	})
	s, err := ReadSummary(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"good.csv", "sub/dir/nested.csv", "back/slash.csv"}
	if len(s.Outputs) != len(want) {
		t.Fatalf("Outputs = %v, want %v", s.Outputs, want)
	}
	for i, w := range want {
		if s.Outputs[i] != w {
			t.Errorf("Outputs[%d] = %q, want %q", i, s.Outputs[i], w)
		}
	}
}

func TestReadOutputsBestEffortOnMissingFile(t *testing.T) {
	out := ReadOutputs("/nonexistent/path_run_meta.json")
	if out != nil {
		t.Errorf("expected nil outputs for unreadable file, got %v", out)
	}
}

func TestParseSelectorSplitsOnLastHash(t *testing.T) {
	path, sel, err := ParseSelector("out_dir#bandpowers.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "out_dir" || sel != "bandpowers.csv" {
		t.Errorf("got path=%q sel=%q", path, sel)
	}
}

func TestParseSelectorNoHashReturnsEmptySelector(t *testing.T) {
	path, sel, err := ParseSelector("out_dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "out_dir" || sel != "" {
		t.Errorf("got path=%q sel=%q", path, sel)
	}
}

func TestMatchesSelectorExactSubstringAndGlob(t *testing.T) {
	if !matchesSelector("bandpowers.csv", "bandpowers.csv") {
		t.Error("expected exact match")
	}
	if !matchesSelector("bandpowers.csv", "powers") {
		t.Error("expected substring match")
	}
	if !matchesSelector("bandpowers.csv", "*powers*") {
		t.Error("expected glob match")
	}
	if matchesSelector("coherence.csv", "bandpowers.csv") {
		t.Error("expected no match")
	}
}

func TestResolveSelectorDisambiguatesDirectory(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bandpowers.csv"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "coherence.csv"), []byte("x"), 0o644)

	got, err := ResolveSelector(dir + "#bandpowers.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "bandpowers.csv" {
		t.Errorf("got %q, want bandpowers.csv", got)
	}
}

func TestResolveSelectorAmbiguousWithoutSelector(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bandpowers.csv"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "coherence.csv"), []byte("x"), 0o644)

	_, err := ResolveSelector(dir)
	if err == nil {
		t.Error("expected ambiguity error when two candidates exist with no selector")
	}
}

func TestResolveOutputsFollowsNestedRunMeta(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "leaf.csv"), []byte("x"), 0o644)
	writeJSON(t, dir, "leaf_run_meta.json", map[string]any{"Outputs": []string{"leaf.csv"}})
	writeJSON(t, dir, "root_run_meta.json", map[string]any{"Outputs": []string{"leaf_run_meta.json"}})

	out, err := ResolveOutputs(filepath.Join(dir, "root_run_meta.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || filepath.Base(out[0]) != "leaf.csv" {
		t.Errorf("expected nested run-meta to resolve to leaf.csv, got %v", out)
	}
}

func TestResolveOutputsCycleProtection(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a_run_meta.json", map[string]any{"Outputs": []string{"b_run_meta.json"}})
	writeJSON(t, dir, "b_run_meta.json", map[string]any{"Outputs": []string{"a_run_meta.json"}})

	// Must terminate (not infinite-loop) and return without error.
	_, err := ResolveOutputs(filepath.Join(dir, "a_run_meta.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
