// Package cloak renders the disguise layer for redirect responses.
//
// The renderer maps a destination URL and a cloaking configuration to a
// response descriptor: either a plain redirect or an HTML interstitial that
// completes the navigation client-side after a randomized delay.
package cloak

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/linkveil/linkveil/internal/model"
)

// DefaultSafeURL is the innocuous page served to classified bots when
// cloaking is enabled. It must never be the real destination.
const DefaultSafeURL = "https://www.wikipedia.org/"

// Delay bounds in milliseconds. The wider range applies when the link's
// delay switch is on.
const (
	minDelayMS      = 500
	shortDelaySpan  = 1000 // 0.5s - 1.5s
	longDelayBaseMS = 1500
	longDelaySpan   = 2500 // 1.5s - 4.0s
	fallbackGraceMS = 1500
)

// Kind discriminates the two response shapes a render can produce.
type Kind int

const (
	KindRedirect Kind = iota
	KindHTML
)

// Response describes the outcome of a render without touching the HTTP
// layer. Redirect responses carry a Location; HTML responses carry a body.
type Response struct {
	Kind     Kind
	Status   int
	Location string
	Body     string
}

// Renderer produces cloaked and plain redirect responses.
// Output is deterministic for fixed inputs and a fixed random source; the
// randomness only feeds the delay and the per-render CSS scoping token.
type Renderer struct {
	safeURL string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRenderer creates a Renderer. An empty safeURL selects DefaultSafeURL.
func NewRenderer(safeURL string) *Renderer {
	if safeURL == "" {
		safeURL = DefaultSafeURL
	}
	return &Renderer{
		safeURL: safeURL,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Render maps (destination, config, classification) to a response.
//
// Cloaking off: plain 302 to the destination. Cloaking on, bot: plain 302
// to the safe page, never the destination. Cloaking on, human: the HTML
// interstitial.
func (r *Renderer) Render(dest string, cfg model.CloakConfig, cloakEnabled, isBot bool) Response {
	if !cloakEnabled {
		return redirect(dest)
	}
	if isBot {
		return redirect(r.safeURL)
	}
	return r.html(dest, cfg)
}

// SafeURL returns the configured bot-safe page.
func (r *Renderer) SafeURL() string {
	return r.safeURL
}

func redirect(location string) Response {
	return Response{
		Kind:     KindRedirect,
		Status:   http.StatusFound,
		Location: location,
	}
}

type pageData struct {
	Token           string
	EncodedDest     string
	Dest            string
	DelayMS         int
	FallbackDelayMS int
	DelaySec        int
}

func (r *Renderer) html(dest string, cfg model.CloakConfig) Response {
	delayMS, token := r.draw(cfg.Delay)

	data := pageData{
		Token:           token,
		EncodedDest:     base64.StdEncoding.EncodeToString([]byte(dest)),
		Dest:            dest,
		DelayMS:         delayMS,
		FallbackDelayMS: delayMS + fallbackGraceMS,
		DelaySec:        (delayMS + 999) / 1000,
	}

	tmpl := scriptedPage
	if !cfg.JSRedirect {
		// Non-scripted variant: meta refresh keyed off the same delay.
		tmpl = metaRefreshPage
	}

	var buf bytes.Buffer
	// Templates are static and parsed at init; execution over a value
	// struct cannot fail.
	_ = tmpl.Execute(&buf, data)

	return Response{
		Kind:   KindHTML,
		Status: http.StatusOK,
		Body:   buf.String(),
	}
}

// draw produces the randomized per-render values under the lock, since
// math/rand sources are not safe for concurrent use.
func (r *Renderer) draw(longDelay bool) (delayMS int, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if longDelay {
		delayMS = longDelayBaseMS + r.rng.Intn(longDelaySpan+1)
	} else {
		delayMS = minDelayMS + r.rng.Intn(shortDelaySpan+1)
	}
	token = fmt.Sprintf("%08x", r.rng.Uint32())
	return delayMS, token
}

// scriptedPage decodes the destination client-side and navigates after the
// delay, first via location.replace, then via location.href as a fallback
// for script environments that block replace. The zero-script fallback link
// carries only the encoded destination.
var scriptedPage = template.Must(template.New("cloak").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<meta name="referrer" content="no-referrer">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>One moment&hellip;</title>
<style>
.s-{{.Token}}{display:flex;align-items:center;justify-content:center;height:100vh;margin:0;font-family:sans-serif;color:#555}
.d-{{.Token}}{width:24px;height:24px;margin-right:12px;border:3px solid #ddd;border-top-color:#888;border-radius:50%;animation:r-{{.Token}} .8s linear infinite}
@keyframes r-{{.Token}}{to{transform:rotate(360deg)}}
</style>
</head>
<body class="s-{{.Token}}">
<div class="d-{{.Token}}"></div>
<p>Taking you to your page&hellip;</p>
<noscript><p><a href="{{.EncodedDest}}" rel="nofollow noreferrer">Continue</a></p></noscript>
<script>
(function () {
  var d = atob("{{.EncodedDest}}");
  setTimeout(function () {
    try { window.location.replace(d); } catch (e) { window.location.href = d; }
  }, {{.DelayMS}});
  setTimeout(function () { window.location.href = d; }, {{.FallbackDelayMS}});
})();
</script>
</body>
</html>
`))

// metaRefreshPage is the non-scripted variant: the navigation runs through a
// meta refresh keyed off the same randomized delay.
var metaRefreshPage = template.Must(template.New("cloak-meta").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<meta name="referrer" content="no-referrer">
<meta http-equiv="refresh" content="{{.DelaySec}};url={{.Dest}}">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>One moment&hellip;</title>
<style>
.s-{{.Token}}{display:flex;align-items:center;justify-content:center;height:100vh;margin:0;font-family:sans-serif;color:#555}
</style>
</head>
<body class="s-{{.Token}}">
<p>Taking you to your page&hellip; <a href="{{.Dest}}" rel="nofollow noreferrer">Continue</a></p>
</body>
</html>
`))
