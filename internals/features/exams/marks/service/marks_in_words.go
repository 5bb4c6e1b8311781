package service

import (
	"math"
	"strings"
)

var (
	ones = []string{"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// MarksInWords: 45.5 → "Forty Five Point Five", 72 → "Seventy Two".
// Dibulatkan ke dua desimal; desimal dibaca per digit.
func MarksInWords(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole := cents / 100
	frac := cents % 100

	words := integerWords(whole)
	if frac > 0 {
		digits := []int64{frac / 10, frac % 10}
		if digits[1] == 0 {
			digits = digits[:1]
		}
		parts := make([]string, 0, len(digits))
		for _, d := range digits {
			parts = append(parts, ones[d])
		}
		words += " Point " + strings.Join(parts, " ")
	}
	if neg {
		words = "Minus " + words
	}
	return words
}

func integerWords(n int64) string {
	if n < 20 {
		return ones[n]
	}
	var parts []string
	for _, sc := range []struct {
		size int64
		name string
	}{{1_000_000_000, "Billion"}, {1_000_000, "Million"}, {1_000, "Thousand"}} {
		if n >= sc.size {
			parts = append(parts, integerWords(n/sc.size), sc.name)
			n %= sc.size
		}
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		parts = append(parts, tens[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, ones[n])
	}
	return strings.Join(parts, " ")
}
