package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumberModeDecimal(t *testing.T) {
	cases := []struct {
		in         string
		accounting float64
		strip      float64
	}{
		{"1,234.50", 1234.50, 1234.50},
		{"(500)", -500, 500},
		{"(1,250.75)", -1250.75, 1250.75},
		{"-42", -42, -42},
		{"", 0, 0},
		{"   ", 0, 0},
		{".", 0, 0},
		{"-", 0, 0},
		{"-.", 0, 0},
		{"abc", 0, 0},
		{"1.2.3", 0, 0},
		{"5-3", 0, 0},
		{"₹ 12.5", 12.5, 12.5},
		{" 7 ", 7, 7},
	}
	for _, tc := range cases {
		if got := NumberAccounting.Decimal(tc.in).InexactFloat64(); got != tc.accounting {
			t.Fatalf("accounting %q: got %v want %v", tc.in, got, tc.accounting)
		}
		if got := NumberStrip.Decimal(tc.in).InexactFloat64(); got != tc.strip {
			t.Fatalf("strip %q: got %v want %v", tc.in, got, tc.strip)
		}
	}
}

func TestParseNumberMode(t *testing.T) {
	for in, want := range map[string]NumberMode{"": NumberAccounting, "Accounting": NumberAccounting, "strip": NumberStrip} {
		got, err := ParseNumberMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err=%v", in, got, err)
		}
	}
	if _, err := ParseNumberMode("loose"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2.345", 2.35},
		{"-2.345", -2.35},
		{"2.344", 2.34},
		{"0.005", 0.01},
		{"-0.005", -0.01},
		{"10", 10},
	}
	for _, tc := range cases {
		if got := Round2(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("Round2(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
