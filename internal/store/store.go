// Package store provides the persistence layer for links and click events.
//
// Two file-backed implementations exist for the click log: FileStore keeps
// the original whole-file rewrite behavior, ClickLog is a true append-only
// log that is safe under concurrent appends within a single process.
package store

import (
	"context"
	"errors"

	"github.com/linkveil/linkveil/internal/model"
)

// ErrLinkNotFound is returned when no link matches the requested id.
var ErrLinkNotFound = errors.New("link not found")

// LinkStore provides read access to link records plus the load/rewrite
// primitives the reads are built from. Links are created and updated by the
// management surface; the redirect core only reads them.
type LinkStore interface {
	// GetLink resolves a link by id or custom alias.
	GetLink(ctx context.Context, id string) (*model.Link, error)

	// LoadLinks reads the complete link collection. A missing or empty
	// backing file yields an empty slice, not an error.
	LoadLinks(ctx context.Context) ([]*model.Link, error)

	// SaveLinks rewrites the complete link collection.
	SaveLinks(ctx context.Context, links []*model.Link) error

	Ping(ctx context.Context) error
}

// ClickStore records click events.
type ClickStore interface {
	// AppendClick records one event. Events are never mutated or deleted.
	AppendClick(ctx context.Context, click *model.ClickEvent) error

	// LoadClicks reads the complete click log.
	LoadClicks(ctx context.Context) ([]*model.ClickEvent, error)

	Ping(ctx context.Context) error
}
