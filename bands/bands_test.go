package bands

import "testing"

func TestParseSpecRoundTrip(t *testing.T) {
	spec := "delta:0.5-4,theta:4-8,alpha:8-13"
	parsed, err := ParseSpec(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(parsed))
	}
	if parsed[0].Name != "delta" || parsed[0].FMinHz != 0.5 || parsed[0].FMaxHz != 4 {
		t.Errorf("unexpected first band: %+v", parsed[0])
	}
	got := ToSpecString(parsed)
	if got != spec {
		t.Errorf("round-trip mismatch: got %q, want %q", got, spec)
	}
}

func TestParseSpecRejectsInvalidRange(t *testing.T) {
	if _, err := ParseSpec("delta:4-0.5"); err == nil {
		t.Error("expected error for max <= min")
	}
	if _, err := ParseSpec("delta4-0.5"); err == nil {
		t.Error("expected error for missing colon")
	}
	if _, err := ParseSpec(""); err == nil {
		t.Error("expected error for empty spec")
	}
}

func TestIndividualizedBandsFromIAF(t *testing.T) {
	opt := DefaultIndividualizedBandsOptions()
	got, err := IndividualizedBandsFromIAF(10, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Band{
		{Name: "delta", FMinHz: 0.5, FMaxHz: 4},
		{Name: "theta", FMinHz: 4, FMaxHz: 8},
		{Name: "alpha", FMinHz: 8, FMaxHz: 12},
		{Name: "beta", FMinHz: 12, FMaxHz: 30},
		{Name: "gamma", FMinHz: 30, FMaxHz: 80},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("band %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIndividualizedBandsFromIAFClampsLowIAF(t *testing.T) {
	// A low IAF would otherwise push theta/alpha edges below delta_min; each
	// edge is clamped to be no lower than the previous one, collapsing
	// narrow bands rather than producing an invalid (non-monotonic) range.
	opt := DefaultIndividualizedBandsOptions()
	got, err := IndividualizedBandsFromIAF(2, opt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].FMinHz < got[i-1].FMinHz {
			t.Errorf("band edges not monotonic: %+v", got)
		}
	}
}

func TestIndividualizedBandsFromIAFRejectsNonPositive(t *testing.T) {
	opt := DefaultIndividualizedBandsOptions()
	if _, err := IndividualizedBandsFromIAF(0, opt); err == nil {
		t.Error("expected error for iaf_hz <= 0")
	}
	if _, err := IndividualizedBandsFromIAF(-5, opt); err == nil {
		t.Error("expected error for negative iaf_hz")
	}
}
