// Package model defines domain entities for the application.
package model

import "time"

// ClickEvent represents a single redirect attempt against a link.
// Events are append-only; nothing in the core mutates or deletes them.
type ClickEvent struct {
	ID string `json:"id"` // ULID (time-sortable, no coordination needed)

	LinkID string `json:"link_id"`

	// Request metadata as presented by the client
	UserAgent      string `json:"user_agent,omitempty"`
	Referer        string `json:"referer,omitempty"`
	AcceptLanguage string `json:"accept_language,omitempty"`

	// Best-effort client network address (first forwarded hop)
	IPAddress string `json:"ip_address,omitempty"`

	// Optional geolocation, filled by the geo resolver when configured
	Country string `json:"country,omitempty"`

	ClickedAt time.Time `json:"clicked_at"`
}
