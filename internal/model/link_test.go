package model

import (
	"encoding/json"
	"testing"
)

func TestLink_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status LinkStatus
		want   bool
	}{
		{"active", LinkStatusActive, true},
		{"paused", LinkStatusPaused, false},
		{"archived", LinkStatusArchived, false},
		{"unknown value", LinkStatus("deleted"), false},
		{"empty", LinkStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Link{Status: tt.status}
			if got := l.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkStatus_IsValid(t *testing.T) {
	for _, status := range []LinkStatus{LinkStatusActive, LinkStatusPaused, LinkStatusArchived} {
		if !status.IsValid() {
			t.Errorf("expected %q to be valid", status)
		}
	}

	if LinkStatus("deleted").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
	if LinkStatus("").IsValid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestLink_Normalize(t *testing.T) {
	l := &Link{ID: "L1", Destination: "https://example.com"}
	l.Normalize()

	if l.Status != LinkStatusActive {
		t.Errorf("expected missing status to default to active, got %q", l.Status)
	}
	if l.TrackingParams == nil {
		t.Error("expected tracking params map to be initialized")
	}
	if l.Tags == nil {
		t.Error("expected tags slice to be initialized")
	}
}

func TestLink_NormalizeKeepsExistingValues(t *testing.T) {
	l := &Link{
		ID:             "L1",
		Status:         LinkStatusPaused,
		TrackingParams: map[string]string{"uid": "u1"},
		Tags:           []string{"summer"},
	}
	l.Normalize()

	if l.Status != LinkStatusPaused {
		t.Errorf("expected status to stay paused, got %q", l.Status)
	}
	if l.TrackingParams["uid"] != "u1" {
		t.Error("expected tracking params to be preserved")
	}
	if len(l.Tags) != 1 || l.Tags[0] != "summer" {
		t.Errorf("expected tags to be preserved, got %v", l.Tags)
	}
}

func TestCloakConfig_JSONRoundTrip(t *testing.T) {
	cfg := CloakConfig{JSRedirect: true, Delay: true}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded CloakConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded != cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, cfg)
	}
}

func TestCloakConfig_UnmarshalOldSchema(t *testing.T) {
	// Older records only carried the js_redirect switch.
	var cfg CloakConfig
	if err := json.Unmarshal([]byte(`{"js_redirect":true}`), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !cfg.JSRedirect {
		t.Error("expected js_redirect to be set")
	}
	if cfg.Delay || cfg.UAVariation || cfg.SuppressReferrer {
		t.Errorf("expected missing switches to default to false, got %+v", cfg)
	}
}
