package cache

import (
	"encoding/json"
	"testing"

	"github.com/linkveil/linkveil/internal/model"
)

func TestLinkKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"ulid id", "01HZX3ABCDEF", "link:01HZX3ABCDEF"},
		{"alias", "summer-sale", "link:summer-sale"},
		{"empty", "", "link:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := linkKey(tt.id); got != tt.want {
				t.Errorf("linkKey(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestNegKey(t *testing.T) {
	t.Parallel()

	if got := negKey("L1"); got != "link:neg:L1" {
		t.Errorf("negKey(%q) = %q, want %q", "L1", got, "link:neg:L1")
	}
}

func TestKeys_DistinctPerID(t *testing.T) {
	t.Parallel()

	// A link entry and its negative marker must never share a key.
	if linkKey("L1") == negKey("L1") {
		t.Error("link key and negative key collide for the same id")
	}
}

func TestDecodeLink_Valid(t *testing.T) {
	t.Parallel()

	link := &model.Link{
		ID:          "L1",
		Destination: "https://merchant.example/offer",
		Status:      model.LinkStatusActive,
		TrackingParams: map[string]string{
			"src": "affiliate",
		},
	}
	raw, err := json.Marshal(link)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, ok := decodeLink(raw)
	if !ok {
		t.Fatal("decodeLink returned not ok for a valid payload")
	}
	if got.ID != "L1" {
		t.Errorf("ID = %q, want L1", got.ID)
	}
	if got.TrackingParams["src"] != "affiliate" {
		t.Errorf("TrackingParams[src] = %q, want affiliate", got.TrackingParams["src"])
	}
}

func TestDecodeLink_NormalizesDefaults(t *testing.T) {
	t.Parallel()

	// Payloads cached by an older build may lack the newer fields;
	// decoding fills the defaults just like the record store does.
	got, ok := decodeLink([]byte(`{"id":"L1","destination":"https://merchant.example/offer"}`))
	if !ok {
		t.Fatal("decodeLink returned not ok")
	}
	if got.Status != model.LinkStatusActive {
		t.Errorf("Status = %q, want %q", got.Status, model.LinkStatusActive)
	}
	if got.TrackingParams == nil {
		t.Error("TrackingParams should be initialized")
	}
	if got.Tags == nil {
		t.Error("Tags should be initialized")
	}
}

func TestDecodeLink_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"id":"L1","destina`},
		{"wrong type", `["not","an","object"]`},
		{"empty", ``},
		{"garbage", `\x00\x01`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, ok := decodeLink([]byte(tt.raw)); ok {
				t.Errorf("decodeLink(%q) should not be ok", tt.raw)
			}
		})
	}
}
