package model

import "time"

// Mission is a catalog entry. Missions are configuration, not user data.
type Mission struct {
	ID          string `json:"id"          toml:"id"     validate:"required"`
	Title       string `json:"title"       toml:"title"  validate:"required"`
	PointReward int    `json:"pointReward" toml:"points" validate:"gt=0"`
	Icon        string `json:"icon"        toml:"icon"`
}

// MissionCompletion records that a mission was credited to a user on one
// calendar day. (UserID, MissionID, Day) is unique; rows are never updated.
type MissionCompletion struct {
	UserID        string    `json:"userId"        db:"user_id"`
	MissionID     string    `json:"missionId"     db:"mission_id"`
	Day           string    `json:"day"           db:"day"` // YYYY-MM-DD in the campaign timezone
	PointsAwarded int       `json:"pointsAwarded" db:"points_awarded"`
	CompletedAt   time.Time `json:"completedAt"   db:"completed_at"`
}
