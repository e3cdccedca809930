package enums

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type SearchGender string

const (
	SearchGenderMale   SearchGender = "male"
	SearchGenderFemale SearchGender = "female"
	SearchGenderAny    SearchGender = "any"
)

func (g SearchGender) Valid() bool {
	switch g {
	case SearchGenderMale, SearchGenderFemale, SearchGenderAny:
		return true
	default:
		return false
	}
}
