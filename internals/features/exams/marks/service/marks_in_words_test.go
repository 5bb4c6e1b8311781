package service

import "testing"

func TestMarksInWords(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{45.5, "Forty Five Point Five"},
		{45.25, "Forty Five Point Two Five"},
		{45.05, "Forty Five Point Zero Five"},
		{72, "Seventy Two"},
		{100, "One Hundred"},
		{150.75, "One Hundred Fifty Point Seven Five"},
		{1200, "One Thousand Two Hundred"},
		{2000005, "Two Million Five"},
		{-3.5, "Minus Three Point Five"},
		{99.999, "One Hundred"},
	}
	for _, tt := range tests {
		if got := MarksInWords(tt.in); got != tt.want {
			t.Fatalf("MarksInWords(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMarkKeepsPrecisionAndRejects(t *testing.T) {
	v, err := parseMark(" 45.456 ")
	if err != nil || v != 45.456 {
		t.Fatalf("parseMark = %v, %v", v, err)
	}
	for _, raw := range []string{"abc", "NaN", "Inf", ""} {
		if _, err := parseMark(raw); err == nil {
			t.Fatalf("parseMark(%q) should fail", raw)
		}
	}
}

func TestValidateMarksChecksUnroundedValue(t *testing.T) {
	tests := []struct {
		obtained, outOf string
		want            string
	}{
		{"-0.001", "100", "Marks obtained cannot be negative"},
		{"0.004", "100", "Marks obtained cannot be 0; leave the row out or record the student as absent"},
		{"100.004", "100", "Marks obtained (100.004) cannot exceed marks out of (100)"},
		{"10", "0.001", "Marks out of must be greater than 0"},
	}
	for _, tt := range tests {
		_, _, errs := validateMarks(tt.obtained, tt.outOf)
		if len(errs) != 1 || errs[0] != tt.want {
			t.Fatalf("validateMarks(%q, %q) = %v, want [%s]", tt.obtained, tt.outOf, errs, tt.want)
		}
	}

	obtained, outOf, errs := validateMarks("45.456", "100")
	if len(errs) != 0 || obtained != 45.46 || outOf != 100 {
		t.Fatalf("validateMarks(45.456) = %v, %v, %v", obtained, outOf, errs)
	}
}
