package model

import (
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
)

type Profile struct {
	UserID          int64               `json:"user_id"`
	Username        string              `json:"username,omitempty"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Class           string              `json:"class"`
	Interests       string              `json:"interests"`
	FavoriteSubject string              `json:"favorite_subject"`
	Hobby           string              `json:"hobby"`
	Dream           string              `json:"dream"`
	AboutMe         string              `json:"about_me"`
	Gender          enums.Gender        `json:"gender"`
	SearchGender    enums.SearchGender  `json:"search_gender"`
	PhotoFileID     string              `json:"photo_file_id,omitempty"`
	PhotoObjectKey  string              `json:"photo_object_key,omitempty"`
	Status          enums.ProfileStatus `json:"status"`
	ReportedCount   int                 `json:"reported_count"`
	RegisteredAt    time.Time           `json:"registered_at"`
	LastReported    *time.Time          `json:"last_reported,omitempty"`
	SkippedAt       *time.Time          `json:"skipped_at,omitempty"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (p Profile) IsActive() bool {
	return p.Status != enums.ProfileStatusBanned
}

func (p Profile) IsApproved() bool {
	return p.Status == enums.ProfileStatusApproved
}

func (p Profile) UnderReview() bool {
	return p.Status == enums.ProfileStatusPendingReview
}

func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Anonymized drops everything that identifies the person behind the profile.
func (p Profile) Anonymized() Profile {
	p.UserID = 0
	p.Username = ""
	p.FirstName = ""
	p.LastName = ""
	return p
}

// ProfileSummary is a list entry for likes and matches.
type ProfileSummary struct {
	UserID    int64     `json:"user_id"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Username  string    `json:"username,omitempty"`
	Class     string    `json:"class"`
	At        time.Time `json:"at"`
}

// ProfileDraft collects field values during profile creation.
type ProfileDraft struct {
	FirstName       string             `json:"first_name,omitempty"`
	LastName        string             `json:"last_name,omitempty"`
	Class           string             `json:"class,omitempty"`
	Gender          enums.Gender       `json:"gender,omitempty"`
	SearchGender    enums.SearchGender `json:"search_gender,omitempty"`
	Interests       string             `json:"interests,omitempty"`
	FavoriteSubject string             `json:"favorite_subject,omitempty"`
	Hobby           string             `json:"hobby,omitempty"`
	Dream           string             `json:"dream,omitempty"`
	AboutMe         string             `json:"about_me,omitempty"`
}

// Set stores value under field. Unknown fields are ignored and reported as false.
func (d *ProfileDraft) Set(field enums.ProfileField, value string) bool {
	switch field {
	case enums.FieldFirstName:
		d.FirstName = value
	case enums.FieldLastName:
		d.LastName = value
	case enums.FieldClass:
		d.Class = value
	case enums.FieldGender:
		d.Gender = enums.Gender(value)
	case enums.FieldSearchGender:
		d.SearchGender = enums.SearchGender(value)
	case enums.FieldInterests:
		d.Interests = value
	case enums.FieldFavoriteSubject:
		d.FavoriteSubject = value
	case enums.FieldHobby:
		d.Hobby = value
	case enums.FieldDream:
		d.Dream = value
	case enums.FieldAboutMe:
		d.AboutMe = value
	default:
		return false
	}
	return true
}

func (d ProfileDraft) Get(field enums.ProfileField) string {
	switch field {
	case enums.FieldFirstName:
		return d.FirstName
	case enums.FieldLastName:
		return d.LastName
	case enums.FieldClass:
		return d.Class
	case enums.FieldGender:
		return string(d.Gender)
	case enums.FieldSearchGender:
		return string(d.SearchGender)
	case enums.FieldInterests:
		return d.Interests
	case enums.FieldFavoriteSubject:
		return d.FavoriteSubject
	case enums.FieldHobby:
		return d.Hobby
	case enums.FieldDream:
		return d.Dream
	case enums.FieldAboutMe:
		return d.AboutMe
	default:
		return ""
	}
}

// Photo is an uploaded profile picture as received from the transport.
type Photo struct {
	FileID      string
	FileName    string
	ContentType string
	Data        []byte
}

type StartView struct {
	State   enums.StartState
	Profile *Profile
}
