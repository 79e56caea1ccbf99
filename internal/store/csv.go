package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/linkveil/linkveil/internal/model"
)

// Column layouts for the flat files. New columns are appended at the end so
// rows written by older versions still decode (missing trailing fields
// default to empty).
var (
	linkHeader = []string{
		"id", "alias", "destination", "campaign_id", "owner_id", "status",
		"tracking_params", "tags", "cloak_enabled", "cloak_config",
		"custom_domain", "created_at", "updated_at",
	}
	clickHeader = []string{
		"id", "link_id", "clicked_at", "user_agent", "referer",
		"accept_language", "ip_address", "country",
	}
)

func encodeLink(l *model.Link) []string {
	params, _ := json.Marshal(l.TrackingParams)
	tags, _ := json.Marshal(l.Tags)
	cloak, _ := json.Marshal(l.Cloak)

	return []string{
		l.ID,
		l.Alias,
		l.Destination,
		l.CampaignID,
		l.OwnerID,
		string(l.Status),
		string(params),
		string(tags),
		boolToString(l.CloakEnabled),
		string(cloak),
		l.CustomDomain,
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	}
}

// decodeLink turns one CSV row into a Link. Returns false for rows that are
// too short or missing required fields; callers skip those silently.
func decodeLink(row []string) (*model.Link, bool) {
	id := field(row, 0)
	destination := field(row, 2)
	if id == "" || destination == "" {
		return nil, false
	}

	l := &model.Link{
		ID:           id,
		Alias:        field(row, 1),
		Destination:  destination,
		CampaignID:   field(row, 3),
		OwnerID:      field(row, 4),
		Status:       model.LinkStatus(field(row, 5)),
		CloakEnabled: field(row, 8) == "1",
		CustomDomain: field(row, 10),
		CreatedAt:    parseTime(field(row, 11)),
		UpdatedAt:    parseTime(field(row, 12)),
	}

	// Embedded JSON sub-values fall back to empty structures on parse
	// failure rather than poisoning the whole row.
	if raw := field(row, 6); raw != "" {
		_ = json.Unmarshal([]byte(raw), &l.TrackingParams)
	}
	if raw := field(row, 7); raw != "" {
		_ = json.Unmarshal([]byte(raw), &l.Tags)
	}
	if raw := field(row, 9); raw != "" {
		_ = json.Unmarshal([]byte(raw), &l.Cloak)
	}

	l.Normalize()
	return l, true
}

func encodeClick(c *model.ClickEvent) []string {
	return []string{
		c.ID,
		c.LinkID,
		c.ClickedAt.UTC().Format(time.RFC3339Nano),
		c.UserAgent,
		c.Referer,
		c.AcceptLanguage,
		c.IPAddress,
		c.Country,
	}
}

func decodeClick(row []string) (*model.ClickEvent, bool) {
	id := field(row, 0)
	linkID := field(row, 1)
	if id == "" || linkID == "" {
		return nil, false
	}

	clickedAt, err := time.Parse(time.RFC3339Nano, field(row, 2))
	if err != nil {
		return nil, false
	}

	return &model.ClickEvent{
		ID:             id,
		LinkID:         linkID,
		ClickedAt:      clickedAt,
		UserAgent:      field(row, 3),
		Referer:        field(row, 4),
		AcceptLanguage: field(row, 5),
		IPAddress:      field(row, 6),
		Country:        field(row, 7),
	}, true
}

// readRows reads every CSV row from path, including the header row.
// A missing file is not an error; the store must be usable before anything
// has been written.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip-invalid-record contract: a row that fails to parse
			// is dropped, it never fails the whole load.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func loadClicksFile(path string) ([]*model.ClickEvent, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	clicks := make([]*model.ClickEvent, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row, clickHeader) {
			continue
		}
		if c, ok := decodeClick(row); ok {
			clicks = append(clicks, c)
		}
	}
	return clicks, nil
}

func isHeader(row, header []string) bool {
	return len(row) > 0 && row[0] == header[0]
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
