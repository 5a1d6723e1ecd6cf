package model

import "time"

// Reward is a shop catalog entry. GrandPrize is display-only.
type Reward struct {
	ID         string `json:"id"         toml:"id"          validate:"required"`
	Title      string `json:"title"      toml:"title"       validate:"required"`
	Cost       int    `json:"cost"       toml:"cost"        validate:"gt=0"`
	Icon       string `json:"icon"       toml:"icon"`
	GrandPrize bool   `json:"grandPrize" toml:"grand_prize"`
}

// Purchase is an immutable record of a successful redemption.
type Purchase struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	RewardID    string    `json:"rewardId"    db:"reward_id"`
	CostPaid    int       `json:"costPaid"    db:"cost_paid"`
	PurchasedAt time.Time `json:"purchasedAt" db:"purchased_at"`
}
