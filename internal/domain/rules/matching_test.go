package rules

import (
	"testing"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
)

func TestGenderMatches(t *testing.T) {
	tests := []struct {
		name string
		pref enums.SearchGender
		g    enums.Gender
		want bool
	}{
		{name: "any male", pref: enums.SearchGenderAny, g: enums.GenderMale, want: true},
		{name: "any female", pref: enums.SearchGenderAny, g: enums.GenderFemale, want: true},
		{name: "male wants male", pref: enums.SearchGenderMale, g: enums.GenderMale, want: true},
		{name: "male rejects female", pref: enums.SearchGenderMale, g: enums.GenderFemale, want: false},
		{name: "female rejects male", pref: enums.SearchGenderFemale, g: enums.GenderMale, want: false},
		{name: "unknown preference", pref: "", g: enums.GenderMale, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenderMatches(tc.pref, tc.g); got != tc.want {
				t.Fatalf("unexpected result: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(200, 100)
	if a != 100 || b != 200 {
		t.Fatalf("unexpected pair: got (%d,%d)", a, b)
	}
	a, b = CanonicalPair(100, 200)
	if a != 100 || b != 200 {
		t.Fatalf("unexpected pair: got (%d,%d)", a, b)
	}
}

func TestGenderFilter(t *testing.T) {
	if got := GenderFilter(enums.SearchGenderAny); got != "" {
		t.Fatalf("expected no filter for any, got %q", got)
	}
	if got := GenderFilter(enums.SearchGenderFemale); got != enums.GenderFemale {
		t.Fatalf("unexpected filter: %q", got)
	}
}
