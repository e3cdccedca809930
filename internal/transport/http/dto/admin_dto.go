package dto

import (
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
}

type AdminStatsResponse struct {
	AdminID int64                 `json:"admin_id"`
	Stats   model.ModerationStats `json:"stats"`
}

type AdminProfileItem struct {
	UserID          int64     `json:"user_id"`
	Username        string    `json:"username,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Class           string    `json:"class"`
	Gender          string    `json:"gender"`
	SearchGender    string    `json:"search_gender"`
	Interests       string    `json:"interests,omitempty"`
	FavoriteSubject string    `json:"favorite_subject,omitempty"`
	Hobby           string    `json:"hobby,omitempty"`
	Dream           string    `json:"dream,omitempty"`
	AboutMe         string    `json:"about_me,omitempty"`
	Status          string    `json:"status"`
	ReportedCount   int       `json:"reported_count"`
	RegisteredAt    time.Time `json:"registered_at"`
	HasPhoto        bool      `json:"has_photo"`
	PhotoURL        string    `json:"photo_url,omitempty"`
}

type AdminModerationNextResponse struct {
	Profile   AdminProfileItem `json:"profile"`
	QueueSize int              `json:"queue_size"`
}

type AdminReportNextResponse struct {
	Report   model.Report      `json:"report"`
	Reporter *AdminProfileItem `json:"reporter,omitempty"`
	Reported *AdminProfileItem `json:"reported,omitempty"`
}

type AdminDecisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type AdminActionsResponse struct {
	Items []model.AdminAction `json:"items"`
}

func NewAdminProfileItem(p model.Profile, photoURL string) AdminProfileItem {
	return AdminProfileItem{
		UserID:          p.UserID,
		Username:        p.Username,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Class:           p.Class,
		Gender:          string(p.Gender),
		SearchGender:    string(p.SearchGender),
		Interests:       p.Interests,
		FavoriteSubject: p.FavoriteSubject,
		Hobby:           p.Hobby,
		Dream:           p.Dream,
		AboutMe:         p.AboutMe,
		Status:          string(p.Status),
		ReportedCount:   p.ReportedCount,
		RegisteredAt:    p.RegisteredAt,
		HasPhoto:        p.PhotoFileID != "",
		PhotoURL:        photoURL,
	}
}
