// Package model defines domain entities for the application.
package model

import "time"

// LinkStatus represents the lifecycle status of a link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusPaused   LinkStatus = "paused"
	LinkStatusArchived LinkStatus = "archived"
)

// IsValid checks if the status is one of the known lifecycle values.
func (s LinkStatus) IsValid() bool {
	return s == LinkStatusActive || s == LinkStatusPaused || s == LinkStatusArchived
}

// CloakConfig holds the per-link cloaking switches.
// Only JSRedirect and Delay change the rendered output; the other two are
// carried for the link-management collaborator.
type CloakConfig struct {
	JSRedirect       bool `json:"js_redirect"`
	Delay            bool `json:"delay"`
	UAVariation      bool `json:"ua_variation"`
	SuppressReferrer bool `json:"suppress_referrer"`
}

// Link represents one trackable destination.
type Link struct {
	ID             string            `json:"id"`
	Alias          string            `json:"alias,omitempty"`
	Destination    string            `json:"destination"`
	CampaignID     string            `json:"campaign_id,omitempty"`
	OwnerID        string            `json:"owner_id,omitempty"`
	TrackingParams map[string]string `json:"tracking_params,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Status         LinkStatus        `json:"status"`
	CloakEnabled   bool              `json:"cloak_enabled"`
	Cloak          CloakConfig       `json:"cloak"`
	CustomDomain   string            `json:"custom_domain,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// IsActive returns true if the link can be used for redirects.
func (l *Link) IsActive() bool {
	return l.Status == LinkStatusActive
}

// Normalize fills defaults for fields that older schema versions did not
// write. Records loaded from storage pass through here exactly once, so
// drift handling stays out of the business code.
func (l *Link) Normalize() {
	if l.Status == "" {
		l.Status = LinkStatusActive
	}
	if l.TrackingParams == nil {
		l.TrackingParams = map[string]string{}
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
}
