// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linkveil/linkveil/internal/botdetect"
	"github.com/linkveil/linkveil/internal/cache"
	"github.com/linkveil/linkveil/internal/cloak"
	"github.com/linkveil/linkveil/internal/metrics"
	"github.com/linkveil/linkveil/internal/model"
	"github.com/linkveil/linkveil/internal/store"
)

// Service errors.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrLinkInactive = errors.New("link is not active")
)

// GeoResolver annotates click events with a country code.
type GeoResolver interface {
	Country(addr string) string
}

// Visitor carries the request signals the redirect pipeline consumes.
type Visitor struct {
	UserAgent      string
	Referer        string
	AcceptLanguage string
	IPAddress      string
}

// RedirectService resolves a link id to a response descriptor, recording a
// click event along the way. States per request:
// Resolve -> Validate -> Track -> Classify -> Respond.
type RedirectService struct {
	links      store.LinkStore
	clicks     store.ClickStore
	cache      *cache.Cache // optional
	classifier *botdetect.Classifier
	renderer   *cloak.Renderer
	geo        GeoResolver // optional
	clickParam string      // correlation query parameter; empty disables
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewRedirectService creates a RedirectService. linkCache and geo may be
// nil; clickParam may be empty to disable the correlation parameter.
func NewRedirectService(
	links store.LinkStore,
	clicks store.ClickStore,
	linkCache *cache.Cache,
	classifier *botdetect.Classifier,
	renderer *cloak.Renderer,
	geo GeoResolver,
	clickParam string,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *RedirectService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedirectService{
		links:      links,
		clicks:     clicks,
		cache:      linkCache,
		classifier: classifier,
		renderer:   renderer,
		geo:        geo,
		clickParam: clickParam,
		metrics:    recorder,
		logger:     logger.With("component", "service.redirect"),
	}
}

// Redirect runs the full pipeline for one request.
//
// The click event is appended before the bot/human branch so every attempt
// is counted even when the bot path discards the real destination. A click
// append failure aborts the request; unknown and inactive links terminate
// before the tracking step and leave no event behind.
func (s *RedirectService) Redirect(ctx context.Context, linkID string, v Visitor) (cloak.Response, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRedirectDuration(time.Since(start))
	}()

	// Resolve
	link, err := s.resolve(ctx, linkID)
	if err != nil {
		return cloak.Response{}, err
	}

	// Validate
	if !link.IsActive() {
		return cloak.Response{}, fmt.Errorf("%w: status %q", ErrLinkInactive, link.Status)
	}

	clickID := ulid.Make().String()
	dest := s.buildDestination(link, clickID)

	// Track
	click := &model.ClickEvent{
		ID:             clickID,
		LinkID:         link.ID,
		ClickedAt:      time.Now().UTC(),
		UserAgent:      v.UserAgent,
		Referer:        v.Referer,
		AcceptLanguage: v.AcceptLanguage,
		IPAddress:      v.IPAddress,
	}
	if s.geo != nil && v.IPAddress != "" {
		click.Country = s.geo.Country(v.IPAddress)
	}

	if err := s.clicks.AppendClick(ctx, click); err != nil {
		s.metrics.IncClickAppended("failed")
		return cloak.Response{}, fmt.Errorf("append click: %w", err)
	}
	s.metrics.IncClickAppended("success")

	// Classify
	isBot := s.classifier.IsBot(v.UserAgent)
	if isBot {
		s.metrics.IncBotDetected()
	}

	// Respond
	resp := s.renderer.Render(dest, link.Cloak, link.CloakEnabled, isBot)
	s.metrics.IncRedirectServed(outcome(link.CloakEnabled, isBot))

	s.logger.Info("redirect_served",
		"link_id", link.ID,
		"click_id", clickID,
		"bot", isBot,
		"cloaked", link.CloakEnabled,
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	return resp, nil
}

// resolve looks the link up, cache first when a cache is configured.
func (s *RedirectService) resolve(ctx context.Context, linkID string) (*model.Link, error) {
	if s.cache != nil {
		if link, err := s.cache.GetLink(ctx, linkID); err == nil {
			s.metrics.IncLinkCacheHit()
			return link, nil
		}
		s.metrics.IncLinkCacheMiss()

		if neg, _ := s.cache.IsNegative(ctx, linkID); neg {
			return nil, ErrLinkNotFound
		}
	}

	link, err := s.links.GetLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegative(ctx, linkID)
			}
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("resolve link: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetLink(ctx, linkID, link); err != nil {
			s.logger.Warn("cache backfill failed", "link_id", linkID, "error", err)
		}
	}

	return link, nil
}

// buildDestination merges the link's stored tracking parameters into the
// destination query string. Stored values override same-named parameters
// already present; the raw URL itself is not re-validated here.
func (s *RedirectService) buildDestination(link *model.Link, clickID string) string {
	parsed, err := url.Parse(link.Destination)
	if err != nil {
		return link.Destination
	}

	q := parsed.Query()
	for k, v := range link.TrackingParams {
		q.Set(k, v)
	}
	if s.clickParam != "" {
		q.Set(s.clickParam, clickID)
	}
	parsed.RawQuery = q.Encode()

	return parsed.String()
}

func outcome(cloakEnabled, isBot bool) string {
	switch {
	case !cloakEnabled:
		return metrics.OutcomeDirect
	case isBot:
		return metrics.OutcomeSafe
	default:
		return metrics.OutcomeCloaked
	}
}
