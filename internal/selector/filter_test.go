package selector

import (
	"slices"
	"testing"
)

func TestNthMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b int
		want []int
	}{
		{2, 1, []int{1, 3, 5}},
		{2, 0, []int{2, 4}},
		{0, 3, []int{3}},
		{-1, 3, []int{1, 2, 3}},
		{3, -1, []int{2, 5}},
		{1, 0, []int{1, 2, 3, 4, 5}},
		{0, 0, nil},
	}
	for _, tt := range tests {
		var got []int
		for pos := 1; pos <= 5; pos++ {
			if nthMatch(pos, tt.a, tt.b) {
				got = append(got, pos)
			}
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("nthMatch(%dn%+d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPositions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		arg  int
		want []int
	}{
		{"first", 0, []int{0}},
		{"last", 0, []int{4}},
		{"eq", 2, []int{2}},
		{"eq", -2, []int{3}},
		{"even", 0, []int{0, 2, 4}},
		{"odd", 0, []int{1, 3}},
		{"lt", 2, []int{1, 0}},
		{"lt", 10, []int{4, 3, 2, 1, 0}},
		{"lt", -4, []int{0}},
		{"gt", 2, []int{3, 4}},
		{"gt", -2, []int{4}},
		{"gt", -10, []int{0, 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		if got := positions(tt.name, tt.arg, 5); !slices.Equal(got, tt.want) {
			t.Errorf("positions(%s, %d) = %v, want %v", tt.name, tt.arg, got, tt.want)
		}
	}
	if got := positions("first", 0, 0); got != nil {
		t.Errorf("positions(first) on empty set = %v, want nil", got)
	}
}

func TestCompareAttr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op, value, check string
		want             bool
	}{
		{"", "anything", "", true},
		{"=", "a", "a", true},
		{"=", "a", "A", false},
		{"!=", "a", "b", true},
		{"^=", "prefix-rest", "prefix", true},
		{"^=", "x", "", false},
		{"$=", "file.txt", ".txt", true},
		{"*=", "haystack", "st", true},
		{"*=", "haystack", "", false},
		{"~=", "one  two\tthree", " two ", true},
		{"~=", "one two", " tw ", false},
		{"~=", "", "  ", false},
		{"|=", "en", "en", true},
		{"|=", "en-US", "en", true},
		{"|=", "english", "en", false},
	}
	for _, tt := range tests {
		if got := compareAttr(tt.op, tt.value, tt.check); got != tt.want {
			t.Errorf("compareAttr(%q, %q, %q) = %v, want %v", tt.op, tt.value, tt.check, got, tt.want)
		}
	}
}
