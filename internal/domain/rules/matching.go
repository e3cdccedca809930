package rules

import "github.com/Evzheva/chatbot-for-dating/internal/domain/enums"

// GenderMatches reports whether a candidate of gender g satisfies preference pref.
func GenderMatches(pref enums.SearchGender, g enums.Gender) bool {
	switch pref {
	case enums.SearchGenderAny:
		return true
	case enums.SearchGenderMale:
		return g == enums.GenderMale
	case enums.SearchGenderFemale:
		return g == enums.GenderFemale
	default:
		return false
	}
}

// CanonicalPair orders an unordered user pair as (min, max).
func CanonicalPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// GenderFilter maps a search preference to the gender stored on candidates.
// An empty result means no filter.
func GenderFilter(pref enums.SearchGender) enums.Gender {
	switch pref {
	case enums.SearchGenderMale:
		return enums.GenderMale
	case enums.SearchGenderFemale:
		return enums.GenderFemale
	default:
		return ""
	}
}
