package model

import "time"

type Like struct {
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	LikedAt    time.Time `json:"liked_at"`
}
