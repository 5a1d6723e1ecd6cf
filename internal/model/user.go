// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a player account.
//
// Points is the single authoritative balance. It is only ever changed by the
// ledger operations in the repository layer, and the store rejects any write
// that would take it below zero. IsPremium is only changed by the admin flow.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	Points    int       `json:"points"    db:"points"`
	Avatar    string    `json:"avatar"    db:"avatar"` // emoji or image seed
	IsPremium bool      `json:"isPremium" db:"is_premium"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
