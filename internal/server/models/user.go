// Package models contains the persistent entities of the funarcade backend.
package models

import "time"

// User is a registered account. PasswordHash is never serialized.
//
// The JSON field names (including "_id") are part of the public API contract
// consumed by the frontend.
type User struct {
	ID             string    `json:"_id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	IsAdmin        bool      `json:"isAdmin"`
	Wallet         int64     `json:"wallet"`
	Avatar         string    `json:"avatar"`
	ActiveSkin     string    `json:"activeSkin"`
	PurchasedSkins []string  `json:"purchasedSkins"`
	CreatedAt      time.Time `json:"createdAt"`
}
