package enums

type LikeOutcome string

const (
	LikeOutcomeAlreadyLiked LikeOutcome = "already_liked"
	LikeOutcomeRecorded     LikeOutcome = "like_recorded"
	LikeOutcomeMatchCreated LikeOutcome = "match_created"
)
