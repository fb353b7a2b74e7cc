package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership is one (user, prompt) row of a membership set. Favorites and cart
// items have the same shape and the same uniqueness rule, so they share a type.
type Membership struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PromptID  int64     `json:"promptId"`
	CreatedAt time.Time `json:"createdAt"`
}

type (
	Favorite = Membership
	CartItem = Membership
)

// Review is an append-only rating of a prompt. Rating is an integer 1–5.
type Review struct {
	ID        int64     `json:"id"`
	PromptID  int64     `json:"promptId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Purchase records that a user bought a prompt, with the price paid at the time.
// Purchases are never updated or deleted.
type Purchase struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	PromptID  int64           `json:"promptId"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Stats are marketplace-wide counters shown on the landing page.
type Stats struct {
	TotalPrompts    int             `json:"totalPrompts"`
	ActiveUsers     int             `json:"activeUsers"`
	CategoriesCount int             `json:"categoriesCount"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
}
