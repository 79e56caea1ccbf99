package cloak

import (
	"encoding/base64"
	"math/rand"
	"net/http"
	"strings"
	"testing"

	"github.com/linkveil/linkveil/internal/model"
)

const testDest = "https://merchant.example/offer?uid=u1"

func pinnedRenderer() *Renderer {
	r := NewRenderer("")
	r.rng = rand.New(rand.NewSource(1))
	return r
}

func TestRender_CloakDisabled(t *testing.T) {
	r := NewRenderer("")

	resp := r.Render(testDest, model.CloakConfig{}, false, false)

	if resp.Kind != KindRedirect {
		t.Fatalf("kind = %v, want KindRedirect", resp.Kind)
	}
	if resp.Status != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.Status, http.StatusFound)
	}
	if resp.Location != testDest {
		t.Errorf("location = %q, want %q", resp.Location, testDest)
	}
}

func TestRender_CloakDisabledIgnoresClassification(t *testing.T) {
	r := NewRenderer("")

	// A bot on a non-cloaked link still gets the real destination.
	resp := r.Render(testDest, model.CloakConfig{}, false, true)

	if resp.Kind != KindRedirect || resp.Location != testDest {
		t.Errorf("bot on plain link: got (%v, %q), want redirect to destination", resp.Kind, resp.Location)
	}
}

func TestRender_BotGetsSafePage(t *testing.T) {
	r := NewRenderer("https://example.org/about")

	resp := r.Render(testDest, model.CloakConfig{JSRedirect: true}, true, true)

	if resp.Kind != KindRedirect {
		t.Fatalf("kind = %v, want KindRedirect", resp.Kind)
	}
	if resp.Location != "https://example.org/about" {
		t.Errorf("location = %q, want safe page", resp.Location)
	}
	if strings.Contains(resp.Location, "merchant.example") {
		t.Error("safe page leaked the destination")
	}
}

func TestRender_DefaultSafeURL(t *testing.T) {
	r := NewRenderer("")
	if got := r.SafeURL(); got != DefaultSafeURL {
		t.Errorf("SafeURL() = %q, want %q", got, DefaultSafeURL)
	}
}

func TestRender_HumanGetsInterstitial(t *testing.T) {
	r := pinnedRenderer()

	resp := r.Render(testDest, model.CloakConfig{JSRedirect: true}, true, false)

	if resp.Kind != KindHTML {
		t.Fatalf("kind = %v, want KindHTML", resp.Kind)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.Status, http.StatusOK)
	}

	body := resp.Body
	if !strings.Contains(body, `name="robots" content="noindex, nofollow"`) {
		t.Error("missing robots noindex directive")
	}
	if !strings.Contains(body, `name="referrer" content="no-referrer"`) {
		t.Error("missing referrer suppression")
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(testDest))
	if !strings.Contains(body, encoded) {
		t.Error("encoded destination missing from body")
	}
	if strings.Contains(body, testDest) {
		t.Error("raw destination leaked into scripted body")
	}

	// Both navigation mechanisms are present.
	if !strings.Contains(body, "window.location.replace") {
		t.Error("missing primary navigation")
	}
	if !strings.Contains(body, "window.location.href") {
		t.Error("missing fallback navigation")
	}
	if !strings.Contains(body, "<noscript>") {
		t.Error("missing noscript fallback link")
	}
	if !strings.Contains(body, `href="`+encoded+`"`) {
		t.Error("noscript link should carry the encoded destination")
	}
}

func TestRender_MetaRefreshVariant(t *testing.T) {
	r := pinnedRenderer()

	resp := r.Render(testDest, model.CloakConfig{JSRedirect: false}, true, false)

	if resp.Kind != KindHTML {
		t.Fatalf("kind = %v, want KindHTML", resp.Kind)
	}
	if !strings.Contains(resp.Body, `http-equiv="refresh"`) {
		t.Error("non-scripted variant should navigate via meta refresh")
	}
	if strings.Contains(resp.Body, "<script>") {
		t.Error("non-scripted variant must not carry script")
	}
	if !strings.Contains(resp.Body, `name="robots" content="noindex, nofollow"`) {
		t.Error("missing robots noindex directive")
	}
}

func TestRender_DeterministicWithFixedSource(t *testing.T) {
	a := pinnedRenderer()
	b := pinnedRenderer()

	cfg := model.CloakConfig{JSRedirect: true}
	if got, want := a.Render(testDest, cfg, true, false).Body, b.Render(testDest, cfg, true, false).Body; got != want {
		t.Error("same source, same inputs should render identical bodies")
	}
}

func TestDraw_DelayBounds(t *testing.T) {
	r := pinnedRenderer()

	for i := 0; i < 500; i++ {
		short, _ := r.draw(false)
		if short < 500 || short > 1500 {
			t.Fatalf("short delay %d out of [500, 1500]", short)
		}
		long, _ := r.draw(true)
		if long < 1500 || long > 4000 {
			t.Fatalf("long delay %d out of [1500, 4000]", long)
		}
	}
}

func TestDraw_TokenShape(t *testing.T) {
	r := pinnedRenderer()

	_, token := r.draw(false)
	if len(token) != 8 {
		t.Errorf("token %q should be 8 hex chars", token)
	}
	for _, c := range token {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("token %q contains non-hex char %q", token, c)
		}
	}
}
