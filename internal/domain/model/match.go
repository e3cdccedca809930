package model

import "time"

// Match is stored with UserAID < UserBID.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	MatchedAt time.Time `json:"matched_at"`
	Status    string    `json:"status"`
}

const MatchStatusActive = "active"
