package enums

type ConversationMode string

const (
	ModeNone                 ConversationMode = ""
	ModeProfileCreation      ConversationMode = "profile_creation"
	ModeEditingProfile       ConversationMode = "editing_profile"
	ModeAwaitingReportID     ConversationMode = "awaiting_report_id"
	ModeAwaitingReportReason ConversationMode = "awaiting_report_reason"
	ModeAwaitingRejectReason ConversationMode = "awaiting_reject_reason"
	ModeAwaitingBanReason    ConversationMode = "awaiting_ban_reason"
	ModeAwaitingPhoto        ConversationMode = "awaiting_photo"
)

type ProfileField string

const (
	FieldFirstName       ProfileField = "first_name"
	FieldLastName        ProfileField = "last_name"
	FieldClass           ProfileField = "class"
	FieldGender          ProfileField = "gender"
	FieldSearchGender    ProfileField = "search_gender"
	FieldInterests       ProfileField = "interests"
	FieldFavoriteSubject ProfileField = "favorite_subject"
	FieldHobby           ProfileField = "hobby"
	FieldDream           ProfileField = "dream"
	FieldAboutMe         ProfileField = "about_me"
)

// CreationSteps is the order in which profile creation collects fields.
var CreationSteps = []ProfileField{
	FieldFirstName,
	FieldLastName,
	FieldClass,
	FieldGender,
	FieldSearchGender,
	FieldInterests,
	FieldFavoriteSubject,
	FieldHobby,
	FieldDream,
	FieldAboutMe,
}

// IsChoice reports whether the field is filled by a button instead of free text.
func (f ProfileField) IsChoice() bool {
	return f == FieldGender || f == FieldSearchGender
}

func (f ProfileField) Valid() bool {
	for _, step := range CreationSteps {
		if step == f {
			return true
		}
	}
	return false
}
