package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		want error
	}{
		{"1", "1", nil},
		{"1.23", "1.23", nil},
		{"1,23", "1.23", nil},
		{" 2.50 ", "2.5", nil},
		{"0.001", "0.001", nil},
		{"-1", "", ErrNonPositiveAmount},
		{"0", "", ErrNonPositiveAmount},
		{"abc", "", ErrInvalidAmount},
		{"1.2.3", "", ErrInvalidAmount},
		{"", "", ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.want != nil {
			if !errors.Is(err, tc.want) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.want, err)
			}
			continue
		}
		if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, whole, out string
	}{
		{"250", "1000", "25"},
		{"1", "3", "33.33"},
		{"2", "3", "66.67"},
		{"1200", "1000", "120"},
		{"10", "0", "0"},
	}
	for _, tc := range cases {
		got := Percentage(decimal.RequireFromString(tc.part), decimal.RequireFromString(tc.whole))
		if !got.Equal(decimal.RequireFromString(tc.out)) {
			t.Fatalf("%s/%s expected %s, got %s", tc.part, tc.whole, tc.out, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("12.5")); got != "12.50" {
		t.Fatalf("expected 12.50, got %s", got)
	}
	if got := FormatAmount(Round2(decimal.RequireFromString("0.125"))); got != "0.13" {
		t.Fatalf("expected 0.13, got %s", got)
	}
}
