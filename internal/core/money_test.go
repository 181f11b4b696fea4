package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"50000", 5000000, true},
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.99", 1299, true},
		{"12.345", 1235, true},
		{"12.346", 1235, true},
		{"12.344", 1234, true},
		{"0.5", 50, true},
		{".5", 50, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1a", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got (%d, %v), want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %d", tc.in, got)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	m, err := MoneyFromFloat(50000)
	if err != nil || m.Cents != 5000000 {
		t.Fatalf("got (%d, %v)", m.Cents, err)
	}
	m, err = MoneyFromFloat(12.34)
	if err != nil || m.Cents != 1234 {
		t.Fatalf("got (%d, %v)", m.Cents, err)
	}
	if _, err := MoneyFromFloat(0); err == nil {
		t.Fatalf("expected error for zero")
	}
	if _, err := MoneyFromFloat(-5); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{Money{Cents: 5000000}, "Rp50000"},
		{Money{Cents: 1234}, "Rp12.34"},
		{Money{Cents: -5000000}, "-Rp50000"},
		{Money{Cents: 0}, "Rp0"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.in); got != tc.want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", tc.in.Cents, got, tc.want)
		}
	}
}
