package util

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		raw, countryCode, want string
	}{
		{"+1 555-0100", "1", "15550100"},
		{"(11) 98888-0001", "55", "5511988880001"},
		{"+55 11 98888-0001", "55", "5511988880001"},
		{"11 98888 0001", "", "11988880001"},
		{"", "55", ""},
		{"abc", "55", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.raw, c.countryCode); got != c.want {
			t.Fatalf("NormalizePhone(%q, %q) = %q, want %q", c.raw, c.countryCode, got, c.want)
		}
	}
}
