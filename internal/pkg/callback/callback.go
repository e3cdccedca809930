// Package callback encodes inline button payloads as "action" or
// "action:id". Telegram limits callback data to 64 bytes.
package callback

import (
	"strconv"
	"strings"
)

type Action string

const (
	Menu          Action = "menu"
	CreateProfile Action = "create_profile"
	MyProfile     Action = "my_profile"
	EditProfile   Action = "edit_profile"
	EditField     Action = "edit_field"
	SetGender     Action = "set_gender"
	SetSearch     Action = "set_search"
	AddPhoto      Action = "add_photo"
	DeleteProfile Action = "delete_profile"
	ConfirmDelete Action = "confirm_delete"

	FindMatch  Action = "find"
	Like       Action = "like"
	Skip       Action = "next"
	MyLikes    Action = "my_likes"
	LikesGiven Action = "likes_given"
	MyMatches  Action = "my_matches"
	ViewLiker  Action = "view_liker"
	ViewMatch  Action = "view_match"
	Report     Action = "report"
	ReportUser Action = "report_user"
	Cancel     Action = "cancel"

	// Step answers during profile creation.
	ChooseGender Action = "gender"
	ChooseSearch Action = "search"

	AdminPanel    Action = "admin"
	ModNext       Action = "mod_next"
	ModApprove    Action = "mod_approve"
	ModReject     Action = "mod_reject"
	ModBan        Action = "mod_ban"
	ModSkip       Action = "mod_skip"
	ModPreset     Action = "mod_preset"
	ModCustom     Action = "mod_custom"
	ReportsNext   Action = "rep_next"
	ReportAccept  Action = "rep_accept"
	ReportDismiss Action = "rep_dismiss"
	ReportBanUser Action = "rep_ban"
)

func Build(action Action) string {
	return string(action)
}

func BuildID(action Action, id int64) string {
	return string(action) + ":" + strconv.FormatInt(id, 10)
}

func BuildValue(action Action, value string) string {
	return string(action) + ":" + value
}

// Parse splits callback data into the action and its optional argument.
func Parse(data string) (Action, string) {
	data = strings.TrimSpace(data)
	action, arg, _ := strings.Cut(data, ":")
	return Action(action), arg
}

// ParseID is Parse for payloads that carry a positive id.
func ParseID(data string) (Action, int64, bool) {
	action, arg := Parse(data)
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return action, 0, false
	}
	return action, id, true
}

// BuildReason encodes a moderation reason pick as "action:decision:id[:code]".
func BuildReason(action Action, decision string, targetID int64, code string) string {
	data := string(action) + ":" + decision + ":" + strconv.FormatInt(targetID, 10)
	if code != "" {
		data += ":" + code
	}
	return data
}

// ParseReason is the inverse of BuildReason for the argument returned by Parse.
func ParseReason(arg string) (decision string, targetID int64, code string, ok bool) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return "", 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, "", false
	}
	if len(parts) == 3 {
		code = parts[2]
	}
	return parts[0], id, code, true
}

// Moderation reports whether the action belongs to the moderator panel.
func (a Action) Moderation() bool {
	switch a {
	case AdminPanel, ModNext, ModApprove, ModReject, ModBan, ModSkip, ModPreset, ModCustom,
		ReportsNext, ReportAccept, ReportDismiss, ReportBanUser:
		return true
	}
	return false
}
