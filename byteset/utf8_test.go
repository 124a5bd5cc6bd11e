package byteset

import "testing"

func TestIsASCII(t *testing.T) {
	if !IsASCII("hello") {
		t.Error("IsASCII(\"hello\") = false, want true")
	}
	if IsASCII("héllo") {
		t.Error("IsASCII(\"héllo\") = true, want false")
	}
}

func TestASCIIFoldMatchesBothCases(t *testing.T) {
	m := ASCIIFold('a')
	if !m.Match('a') || !m.Match('A') {
		t.Errorf("ASCIIFold('a') must match 'a' and 'A'")
	}
	if m.Match('b') {
		t.Errorf("ASCIIFold('a') must not match 'b'")
	}
	if _, ok := ASCIIFold('5').(*mExact); !ok {
		t.Errorf("ASCIIFold('5') = %T, want *mExact (no case to fold)", ASCIIFold('5'))
	}
}

func TestCaseVariantsDeduplicatesAndSorts(t *testing.T) {
	runs := CaseVariants('k')
	// 'k' has a Turkish-style Kelvin-sign-adjacent quirk-free case pair:
	// plain ASCII upper/lower, so exactly two variants are expected.
	if len(runs) != 2 {
		t.Fatalf("CaseVariants('k') = %v, want 2 entries", runs)
	}
	for i := 1; i < len(runs); i++ {
		if !runLess(runs[i-1], runs[i]) {
			t.Errorf("runs not strictly increasing at %d: %v", i, runs)
		}
	}

	digits := CaseVariants('5')
	if len(digits) != 1 {
		t.Fatalf("CaseVariants('5') = %v, want 1 entry (no case)", digits)
	}
}

func TestCaseVariantsMultiByteRune(t *testing.T) {
	// 'é' (U+00E9) and 'É' (U+00C9) both encode as two UTF-8 bytes, but
	// different bytes, not a shared-length bit flip.
	runs := CaseVariants('é')
	if len(runs) != 2 {
		t.Fatalf("CaseVariants('é') = %v, want 2 entries", runs)
	}
	for _, r := range runs {
		if len(r) != 2 {
			t.Errorf("run %v has length %d, want 2", r, len(r))
		}
	}
}

func TestLiteralRunsASCIIFastPath(t *testing.T) {
	runs := LiteralRuns("Hi", true)
	if len(runs) != 2 {
		t.Fatalf("got %d positions, want 2", len(runs))
	}
	for _, pos := range runs {
		if len(pos) != 2 {
			t.Errorf("position %v has %d alternatives, want 2", pos, len(pos))
		}
	}
}

func TestLiteralRunsCaseSensitiveIsSingleAlternative(t *testing.T) {
	runs := LiteralRuns("Hi", false)
	for _, pos := range runs {
		if len(pos) != 1 {
			t.Errorf("case-sensitive position %v has %d alternatives, want 1", pos, len(pos))
		}
	}
}
