package interpreter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	mantissaBits = 52
	exponentBias = 1023
	mantissaMask = 1<<mantissaBits - 1
)

// FormatHexFloat renders f in the canonical hexadecimal form, e.g. 0x1.4000000000000p+2.
// Subnormals keep a leading 0 digit and the minimum exponent, so every finite
// value maps to exactly one string and parses back bit for bit.
func FormatHexFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sign := ""
	if math.Signbit(f) {
		sign = "-"
	}

	bits := math.Float64bits(f)
	exp := int((bits >> mantissaBits) & 0x7ff)
	mant := bits & mantissaMask

	if exp == 0 {
		if mant == 0 {
			return sign + "0x0.0p+0"
		}
		return fmt.Sprintf("%s0x0.%013xp%+d", sign, mant, 1-exponentBias)
	}

	return fmt.Sprintf("%s0x1.%013xp%+d", sign, mant, exp-exponentBias)
}

var hexFloatRegex = regexp.MustCompile(`^([+-])?(?:0[xX])?([0-9a-fA-F]*)(?:\.([0-9a-fA-F]*))?(?:[pP]([+-]?\d+))?$`)

// ParseHexFloat parses a hexadecimal float literal. The 0x prefix and the
// binary exponent are optional; inf, infinity and nan are accepted in any case.
func ParseHexFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)

	body := strings.TrimLeft(s, "+-")
	negative := strings.HasPrefix(s, "-")
	if len(s)-len(body) <= 1 {
		switch strings.ToLower(body) {
		case "inf", "infinity":
			if negative {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		case "nan":
			return math.NaN(), nil
		}
	}

	m := hexFloatRegex.FindStringSubmatch(s)
	if m == nil || m[2]+m[3] == "" {
		return 0, fmt.Errorf("invalid hexadecimal float %q", s)
	}

	exp := m[4]
	if exp == "" {
		exp = "0"
	}

	literal := m[1] + "0x" + m[2]
	if m[2] == "" {
		literal += "0"
	}
	if m[3] != "" {
		literal += "." + m[3]
	}
	literal += "p" + exp

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hexadecimal float %q: %w", s, err)
	}

	return f, nil
}

// NormalizeHexFloat re-encodes a float payload in its canonical form
func NormalizeHexFloat(s string) (string, error) {
	f, err := ParseHexFloat(s)
	if err != nil {
		return "", err
	}
	return FormatHexFloat(f), nil
}
