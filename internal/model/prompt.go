package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is static reference data created at seed time.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Icon        string  `json:"icon"`
	Description *string `json:"description"`
}

// Prompt is a sellable text template listed in the catalog.
//
// Price and Rating are decimals, not float64: money must not pick up binary
// rounding errors (0.1 + 0.2 != 0.3 in float64). shopspring/decimal marshals to
// a JSON string ("12.99"), matching the NUMERIC(10,2) column it is stored in.
//
// Raw Prompt values never leave the service layer on their own. Every response
// wraps them in PromptWithDetails (see service.Enricher).
type Prompt struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Content      string          `json:"content"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   int64           `json:"categoryId"`
	AuthorID     int64           `json:"authorId"`
	Rating       decimal.Decimal `json:"rating"`
	SalesCount   int             `json:"salesCount"`
	Featured     bool            `json:"featured"`
	Trending     bool            `json:"trending"`
	IsNew        bool            `json:"isNew"`
	Tags         []string        `json:"tags"`
	PreviewImage *string         `json:"previewImage"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PromptWithDetails is the only prompt shape returned to callers: the prompt
// joined with its category, a reduced author projection and its review count.
//
// EMBEDDING:
// Prompt is embedded (no field name), so its fields are promoted and
// encoding/json flattens them into the same JSON object:
//
//	{"id":1,"title":"...","category":{...},"author":{...},"reviewCount":3}
//
// IsFavorited and InCart are only filled in for authenticated viewers; for
// anonymous requests they stay nil and are omitted.
type PromptWithDetails struct {
	Prompt
	Category    Category      `json:"category"`
	Author      AuthorSummary `json:"author"`
	ReviewCount int           `json:"reviewCount"`
	IsFavorited *bool         `json:"isFavorited,omitempty"`
	InCart      *bool         `json:"inCart,omitempty"`
}
