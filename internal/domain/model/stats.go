package model

type ModerationStats struct {
	PendingProfiles int64 `json:"pending_profiles"`
	PendingReports  int64 `json:"pending_reports"`
	Approved        int64 `json:"approved"`
	Banned          int64 `json:"banned"`
	TotalProfiles   int64 `json:"total_profiles"`
	TotalLikes      int64 `json:"total_likes"`
	TotalMatches    int64 `json:"total_matches"`
	TotalReports    int64 `json:"total_reports"`
	TotalActions    int64 `json:"total_actions"`
}
