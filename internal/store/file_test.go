package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkveil/linkveil/internal/model"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestFileStore_LoadLinksEmpty(t *testing.T) {
	s := newTestFileStore(t)

	links, err := s.LoadLinks(context.Background())
	if err != nil {
		t.Fatalf("LoadLinks on missing file: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected empty collection, got %d links", len(links))
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	links := []*model.Link{
		{
			ID:          "L1",
			Alias:       "spring-sale",
			Destination: "https://merchant.example/offer",
			CampaignID:  "C1",
			OwnerID:     "U1",
			TrackingParams: map[string]string{
				"uid": "u1",
				// Values containing the separator, quotes, and newlines
				// must survive the CSV encoding.
				"note": `a,b"c` + "\nd",
			},
			Tags:         []string{"summer", "eu"},
			Status:       model.LinkStatusActive,
			CloakEnabled: true,
			Cloak:        model.CloakConfig{JSRedirect: true, Delay: true},
			CustomDomain: "go.merchant.example",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:          "L2",
			Destination: `https://other.example/path?q="quoted, with comma"`,
			Status:      model.LinkStatusPaused,
		},
	}

	if err := s.SaveLinks(ctx, links); err != nil {
		t.Fatalf("SaveLinks: %v", err)
	}

	loaded, err := s.LoadLinks(ctx)
	if err != nil {
		t.Fatalf("LoadLinks: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 links, got %d", len(loaded))
	}

	got := loaded[0]
	if got.ID != "L1" || got.Alias != "spring-sale" || got.Destination != "https://merchant.example/offer" {
		t.Errorf("unexpected identity fields: %+v", got)
	}
	if got.TrackingParams["note"] != `a,b"c`+"\nd" {
		t.Errorf("special characters mangled: %q", got.TrackingParams["note"])
	}
	if !got.CloakEnabled || !got.Cloak.JSRedirect || !got.Cloak.Delay {
		t.Errorf("cloak config mismatch: enabled=%v cfg=%+v", got.CloakEnabled, got.Cloak)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("created_at mismatch: got %v, want %v", got.CreatedAt, now)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "summer" {
		t.Errorf("tags mismatch: %v", got.Tags)
	}

	if loaded[1].Status != model.LinkStatusPaused {
		t.Errorf("expected paused status, got %q", loaded[1].Status)
	}
}

func TestFileStore_GetLink(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	links := []*model.Link{
		{ID: "L1", Alias: "promo", Destination: "https://a.example", Status: model.LinkStatusActive},
		{ID: "L2", Destination: "https://b.example", Status: model.LinkStatusActive},
	}
	if err := s.SaveLinks(ctx, links); err != nil {
		t.Fatalf("SaveLinks: %v", err)
	}

	byID, err := s.GetLink(ctx, "L2")
	if err != nil {
		t.Fatalf("GetLink by id: %v", err)
	}
	if byID.Destination != "https://b.example" {
		t.Errorf("wrong link resolved: %+v", byID)
	}

	byAlias, err := s.GetLink(ctx, "promo")
	if err != nil {
		t.Fatalf("GetLink by alias: %v", err)
	}
	if byAlias.ID != "L1" {
		t.Errorf("alias resolved to %q, want L1", byAlias.ID)
	}

	if _, err := s.GetLink(ctx, "missing"); err != ErrLinkNotFound {
		t.Errorf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestFileStore_SkipsMalformedRows(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	// Hand-written file with a header, a valid row, a short row missing
	// its destination, and a row with broken embedded JSON.
	content := "id,alias,destination,campaign_id,owner_id,status,tracking_params,tags,cloak_enabled,cloak_config,custom_domain,created_at,updated_at\n" +
		"L1,,https://a.example,,,active,{},[],0,{},,,\n" +
		"L2,\n" +
		"L3,,https://c.example,,,active,{broken json,[],0,{},,,\n"
	if err := os.WriteFile(filepath.Join(s.dir, linksFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	links, err := s.LoadLinks(ctx)
	if err != nil {
		t.Fatalf("LoadLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 surviving links, got %d", len(links))
	}
	if links[0].ID != "L1" || links[1].ID != "L3" {
		t.Errorf("unexpected survivors: %q, %q", links[0].ID, links[1].ID)
	}

	// Broken embedded JSON falls back to an empty structure.
	if len(links[1].TrackingParams) != 0 {
		t.Errorf("expected empty tracking params, got %v", links[1].TrackingParams)
	}
}

func TestFileStore_ToleratesOldSchemaRows(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	// A row written before status, cloaking, and timestamps existed.
	content := "id,alias,destination\n" +
		"L1,old-alias,https://legacy.example\n"
	if err := os.WriteFile(filepath.Join(s.dir, linksFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	link, err := s.GetLink(ctx, "L1")
	if err != nil {
		t.Fatalf("GetLink: %v", err)
	}

	if link.Status != model.LinkStatusActive {
		t.Errorf("expected missing status to default to active, got %q", link.Status)
	}
	if link.CloakEnabled {
		t.Error("expected missing cloak toggle to default to false")
	}
	if link.TrackingParams == nil || link.Tags == nil {
		t.Error("expected empty structures for missing JSON fields")
	}
}

func TestFileStore_AppendClickRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	click := &model.ClickEvent{
		ID:             "01HTEST0000000000000000000",
		LinkID:         "L1",
		ClickedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		UserAgent:      `Mozilla/5.0 "quoted, agent"`,
		Referer:        "https://ref.example/page",
		AcceptLanguage: "en-US,en;q=0.9",
		IPAddress:      "192.0.2.10",
		Country:        "DE",
	}

	if err := s.AppendClick(ctx, click); err != nil {
		t.Fatalf("AppendClick: %v", err)
	}
	if err := s.AppendClick(ctx, &model.ClickEvent{
		ID: "01HTEST0000000000000000001", LinkID: "L1", ClickedAt: click.ClickedAt,
	}); err != nil {
		t.Fatalf("AppendClick: %v", err)
	}

	clicks, err := s.LoadClicks(ctx)
	if err != nil {
		t.Fatalf("LoadClicks: %v", err)
	}
	if len(clicks) != 2 {
		t.Fatalf("expected 2 clicks, got %d", len(clicks))
	}

	got := clicks[0]
	if got.ID != click.ID || got.LinkID != "L1" {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.UserAgent != click.UserAgent {
		t.Errorf("user agent mangled: %q", got.UserAgent)
	}
	if !got.ClickedAt.Equal(click.ClickedAt) {
		t.Errorf("timestamp mismatch: got %v, want %v", got.ClickedAt, click.ClickedAt)
	}
	if got.Country != "DE" {
		t.Errorf("country mismatch: %q", got.Country)
	}
}

func TestFileStore_LoadClicksEmpty(t *testing.T) {
	s := newTestFileStore(t)

	clicks, err := s.LoadClicks(context.Background())
	if err != nil {
		t.Fatalf("LoadClicks on missing file: %v", err)
	}
	if len(clicks) != 0 {
		t.Errorf("expected empty log, got %d clicks", len(clicks))
	}
}
