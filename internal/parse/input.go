package parse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// +38, a mobile-operator prefix, then seven digits.
	phoneRe = regexp.MustCompile(`^\+38(050|066|095|099|067|068|096|097|098|063|073|093|091)\d{7}$`)
	spaceRe = regexp.MustCompile(`\s+`)
	slugRe  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	// Plain decimal notation only: no sign, exponent, hex or NaN/Inf words.
	powerRe = regexp.MustCompile(`^(?:\d+\.?\d*|\.\d+)$`)
)

// Messages shown next to the offending form field.
var (
	ErrPhoneFormat  = errors.New("the number must be '+38', the operator code, then 7 more digits, e.g. +380501234567")
	ErrPowerEmpty   = errors.New("enter the motor power value")
	ErrPowerInvalid = errors.New("invalid input, enter a numeric power value")
	ErrIndexEmpty   = errors.New("enter the node index")
	ErrSlugFormat   = errors.New("slug may contain only lowercase latin letters, digits and single dashes")
)

// Phone validates a mobile number. Surrounding whitespace and inner spaces
// or dashes typed for readability are removed first.
func Phone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	if !phoneRe.MatchString(s) {
		return "", ErrPhoneFormat
	}
	return s, nil
}

// Power parses a motor power in kW as typed by a user. A decimal comma is
// accepted.
func Power(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrPowerEmpty
	}
	s = strings.Replace(s, ",", ".", 1)
	if !powerRe.MatchString(s) {
		return 0, ErrPowerInvalid
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrPowerInvalid
	}
	return v, nil
}

// FormatPower renders a power value the way users type it: "10" or "7.5".
func FormatPower(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NodeIndex normalizes a human-entered node index: trims it and collapses
// inner whitespace. Case is preserved; lookups are exact.
func NodeIndex(raw string) (string, error) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return "", ErrIndexEmpty
	}
	return s, nil
}

// Slug validates a URL slug.
func Slug(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !slugRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrSlugFormat, raw)
	}
	return s, nil
}
