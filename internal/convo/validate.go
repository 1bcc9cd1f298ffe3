package convo

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"
)

// ErrInput is the recoverable validation failure returned for malformed input.
var ErrInput = errors.New("invalid input")

// TimeFormat is the absolute timestamp representation stored on records.
const TimeFormat = "2006-01-02 15:04:05"

// dateLayout lists the accepted date fields in left-to-right priority:
// year, month, day, hour, minute, two digits each.
const dateLayout = "0601021504"

var amountRe = regexp.MustCompile(`^\d*\.?\d{0,2}$`)

// maxAmount caps accepted amounts at ten billion; larger values cannot be
// represented exactly as float64 cents and overflow the cents column anyway.
const maxAmount = 1e10

// ValidateText accepts any string unchanged.
func ValidateText(raw string) (string, error) {
	return raw, nil
}

// ValidateDate parses a digit string of even length up to 10 against a prefix
// of the YYMMDDHHMM layout and returns the fully padded absolute timestamp.
func ValidateDate(raw string) (string, error) {
	if len(raw) == 0 || len(raw) > len(dateLayout) || len(raw)%2 != 0 {
		return "", ErrInput
	}
	t, err := time.Parse(dateLayout[:len(raw)], raw)
	if err != nil {
		return "", ErrInput
	}
	return t.Format(TimeFormat), nil
}

// ValidateAmount converts a decimal amount with up to two fractional digits
// into an integer number of cents.
func ValidateAmount(raw string) (int64, error) {
	if !amountRe.MatchString(raw) {
		return 0, ErrInput
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f > maxAmount {
		return 0, ErrInput
	}
	return int64(math.Round(f * 100)), nil
}

// ValidateBoolean maps the literals "Yes" and "No" to true and false.
// Callers are expected to prefilter; anything else fails.
func ValidateBoolean(raw string) (bool, error) {
	switch raw {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	}
	return false, ErrInput
}

// validate converts raw text into the slot's typed value.
func (s Slot) validate(raw string) (any, error) {
	switch s.Kind {
	case KindText:
		return ValidateText(raw)
	case KindDate:
		return ValidateDate(raw)
	case KindAmount:
		return ValidateAmount(raw)
	case KindBoolean:
		return ValidateBoolean(raw)
	case KindChoice, KindPayment:
		for _, choice := range s.Choices {
			if raw == choice {
				return raw, nil
			}
		}
		return nil, ErrInput
	}
	return nil, ErrInput
}
