package recording

import (
	"math"
	"strings"
	"testing"
)

func TestNormalizeChannelName(t *testing.T) {
	cases := map[string]string{
		"EEG Fp1-REF": "fp1",
		"  Cz  ":      "cz",
		"T3":          "t7",
		"t4":          "t8",
		"T5-Ref":      "p7",
		"EEG_O2_Ref":  "o2",
	}
	for in, want := range cases {
		got := NormalizeChannelName(in)
		if got != want {
			t.Errorf("NormalizeChannelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLegacyAliasesMatchModernNames(t *testing.T) {
	if NormalizeChannelName("T3") != NormalizeChannelName("T7") {
		t.Error("T3 should normalize to the same name as T7")
	}
	if NormalizeChannelName("T6") != NormalizeChannelName("P8") {
		t.Error("T6 should normalize to the same name as P8")
	}
}

func TestValidateCatchesMismatchedLengths(t *testing.T) {
	r := Recording{
		FsHz:     100,
		Channels: []string{"a", "b"},
		Samples:  [][]float32{{1, 2, 3}, {1, 2}},
	}
	if err := r.Validate(); err == nil {
		t.Error("expected error for mismatched channel lengths")
	}
}

func TestPoint2DToSphereWithinDisk(t *testing.T) {
	p := Point2D{X: 0.3, Y: 0.4}
	q := p.ToSphere()
	want := math.Sqrt(1 - 0.09 - 0.16)
	if math.Abs(q.Z-want) > 1e-9 {
		t.Errorf("expected z=%v, got %v", want, q.Z)
	}
}

func TestPoint2DToSphereClampsOutsideDisk(t *testing.T) {
	p := Point2D{X: 2, Y: 0}
	q := p.ToSphere()
	if math.Abs(q.X-1) > 1e-9 || math.Abs(q.Z) > 1e-9 {
		t.Errorf("expected clamp to (1,0,0), got %+v", q)
	}
}

func TestLoadMontageCSVWithHeaderAndComments(t *testing.T) {
	data := `# standard 10-20 montage
name,x,y
Fp1,-0.3,0.8
Fp2,0.3,0.8
Cz,0,0
`
	m, err := LoadMontageCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m))
	}
	if p, ok := m["fp1"]; !ok || p.X != -0.3 || p.Y != 0.8 {
		t.Errorf("fp1 = %+v, ok=%v", p, ok)
	}
}

func TestLoadMontageCSVWithoutHeaderAndSemicolons(t *testing.T) {
	data := "fp1;-0.3;0.8\nfp2;0.3;0.8\ncz;0;0\n"
	m, err := LoadMontageCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m))
	}
	if p, ok := m["cz"]; !ok || p.X != 0 || p.Y != 0 {
		t.Errorf("cz = %+v, ok=%v", p, ok)
	}
}

func TestLoadMontageCSVRejectsEmptyInput(t *testing.T) {
	_, err := LoadMontageCSV(strings.NewReader("# nothing but comments\n"))
	if err == nil {
		t.Error("expected error for montage with no entries")
	}
}
