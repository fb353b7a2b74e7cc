// Package model defines the data structures used throughout the application.
// Structs here carry no behaviour beyond small projections; the rules live in
// catalog and service.
package model

import "time"

// User represents a registered marketplace account.
//
// PasswordHash carries the `json:"-"` tag so that encoding/json never writes it,
// whichever response a User ends up in. Prompt responses never embed a User at
// all; they embed the reduced AuthorSummary instead.
//
// Avatar is a *string because it is optional: nil marshals to null, which is what
// the frontend expects for "no avatar". GitHubID is set only for accounts created
// through GitHub sign-in; password-less accounts carry an empty PasswordHash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"-"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthorSummary is the public projection of a User embedded in prompt views.
type AuthorSummary struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Summary projects the user down to the fields that may be shown next to a prompt.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
