package convo

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"full", "2301021504", "2023-01-02 15:04:00", true},
		{"year and month", "2301", "2023-01-01 00:00:00", true},
		{"year only", "23", "2023-01-01 00:00:00", true},
		{"odd length", "230", "", false},
		{"non digits", "23ab", "", false},
		{"empty", "", "", false},
		{"too long", "230102150455", "", false},
		{"bad month", "2313", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateDate(tc.raw)
			if tc.ok {
				if err != nil {
					t.Fatalf("ValidateDate(%q) error: %v", tc.raw, err)
				}
				if got != tc.want {
					t.Fatalf("ValidateDate(%q) = %q, want %q", tc.raw, got, tc.want)
				}
				return
			}
			if !errors.Is(err, ErrInput) {
				t.Fatalf("ValidateDate(%q) err = %v, want ErrInput", tc.raw, err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"12", 1200, true},
		{"12.5", 1250, true},
		{"12.34", 1234, true},
		{".5", 50, true},
		{"0.99", 99, true},
		{"0", 0, true},
		{"12.345", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"12.3.4", 0, false},
		{"-5", 0, false},
	}
	for _, tc := range cases {
		got, err := ValidateAmount(tc.raw)
		if tc.ok {
			if err != nil {
				t.Errorf("ValidateAmount(%q) error: %v", tc.raw, err)
				continue
			}
			if got != tc.want {
				t.Errorf("ValidateAmount(%q) = %d, want %d", tc.raw, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInput) {
			t.Errorf("ValidateAmount(%q) err = %v, want ErrInput", tc.raw, err)
		}
	}
}

func TestValidateAmountBound(t *testing.T) {
	if got, err := ValidateAmount("9999999999.99"); err != nil || got != 999999999999 {
		t.Fatalf("ValidateAmount(9999999999.99) = %d, %v", got, err)
	}
	if _, err := ValidateAmount("10000000001"); !errors.Is(err, ErrInput) {
		t.Fatalf("amount above bound err = %v, want ErrInput", err)
	}
	// A digit string long enough to overflow int64 cents must be rejected,
	// not wrapped.
	if _, err := ValidateAmount(strings.Repeat("9", 400)); !errors.Is(err, ErrInput) {
		t.Fatalf("huge amount err = %v, want ErrInput", err)
	}
}

func TestValidateBoolean(t *testing.T) {
	if v, err := ValidateBoolean("Yes"); err != nil || v != true {
		t.Fatalf("ValidateBoolean(Yes) = %v, %v", v, err)
	}
	if v, err := ValidateBoolean("No"); err != nil || v != false {
		t.Fatalf("ValidateBoolean(No) = %v, %v", v, err)
	}
	for _, raw := range []string{"yes", "NO", "maybe", ""} {
		if _, err := ValidateBoolean(raw); !errors.Is(err, ErrInput) {
			t.Errorf("ValidateBoolean(%q) err = %v, want ErrInput", raw, err)
		}
	}
}

func TestSlotValidateChoice(t *testing.T) {
	slot := Slot{Name: SlotPayment, Kind: KindPayment, Choices: PaymentMethods}
	for _, m := range PaymentMethods {
		if v, err := slot.validate(m); err != nil || v != m {
			t.Errorf("validate(%q) = %v, %v", m, v, err)
		}
	}
	if _, err := slot.validate("Cash"); !errors.Is(err, ErrInput) {
		t.Errorf("validate(Cash) err = %v, want ErrInput", err)
	}
}
