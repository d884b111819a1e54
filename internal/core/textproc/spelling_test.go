package textproc

import "testing"

type mapDictionary map[string]string

func (d mapDictionary) Correction(word string) (string, bool) {
	fixed, ok := d[word]
	return fixed, ok
}

func TestCorrectorReplacesAlphabeticTokens(t *testing.T) {
	c := NewCorrector(mapDictionary{"Hemoglobn": "Hemoglobin", "plateltes": "platelets"})

	got := c.Correct("Hemoglobn 9.0 g/dL plateltes normal")
	want := "Hemoglobin 9.0 g/dL platelets normal"
	if got != want {
		t.Fatalf("Correct() = %q, want %q", got, want)
	}
}

func TestCorrectorLeavesNonAlphabeticTokensUntouched(t *testing.T) {
	dict := mapDictionary{
		"9.0":       "nine",
		"g/dL":      "gal",
		"(12.0-15)": "range",
		"WBC2":      "WBC",
		"mg%":       "mg",
	}
	c := NewCorrector(dict)

	in := "9.0 g/dL (12.0-15) WBC2 mg%"
	if got := c.Correct(in); got != in {
		t.Fatalf("expected non-alphabetic tokens unchanged, got %q", got)
	}
}

func TestCorrectorKeepsTokenWithoutCorrection(t *testing.T) {
	c := NewCorrector(mapDictionary{})
	if got := c.Correct("unknownword  here"); got != "unknownword here" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCorrectorWithoutDictionaryIsIdentityOnTokens(t *testing.T) {
	var c *Corrector
	if got := c.Correct("a  b\tc"); got != "a b c" {
		t.Fatalf("unexpected output %q", got)
	}
}
