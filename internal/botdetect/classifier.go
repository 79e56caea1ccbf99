// Package botdetect classifies request user-agents as automated or human.
//
// Classification is a best-effort heuristic over a data-driven signature
// table, not a security boundary. False positives and false negatives are
// both expected and acceptable.
package botdetect

import "strings"

// DefaultSignatures is the built-in signature table: search-engine bots,
// social link previewers, generic automation tokens, command-line HTTP
// clients, scripting-language defaults, and headless/automation frameworks.
// Matching is case-insensitive substring.
var DefaultSignatures = []string{
	// Search engines
	"googlebot",
	"bingbot",
	"yandexbot",
	"duckduckbot",
	"baiduspider",
	"slurp",
	"applebot",

	// Social / messenger link previewers
	"facebookexternalhit",
	"facebot",
	"twitterbot",
	"linkedinbot",
	"telegrambot",
	"whatsapp",
	"slackbot",
	"discordbot",
	"pinterestbot",
	"skypeuripreview",

	// Generic automation tokens
	"bot",
	"crawler",
	"spider",
	"scraper",

	// Command-line HTTP clients
	"curl",
	"wget",
	"httpie",
	"libwww-perl",

	// Scripting-language default clients
	"python-requests",
	"python-urllib",
	"go-http-client",
	"okhttp",
	"java/",
	"php/",
	"ruby",
	"node-fetch",
	"axios",

	// Headless browsers and automation frameworks
	"headlesschrome",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
	"electron",

	// SEO / monitoring crawlers
	"lighthouse",
	"pingdom",
	"uptimerobot",
	"semrushbot",
	"ahrefsbot",
	"mj12bot",
	"dotbot",
	"petalbot",
	"bytespider",
}

// Classifier decides whether a user-agent string looks automated.
// The signature table is injected so it can be extended and tested in
// isolation from HTTP concerns.
type Classifier struct {
	signatures []string
}

// New creates a Classifier with the given signature table.
// Signatures are matched case-insensitively as substrings.
func New(signatures []string) *Classifier {
	lowered := make([]string, len(signatures))
	for i, s := range signatures {
		lowered[i] = strings.ToLower(s)
	}
	return &Classifier{signatures: lowered}
}

// NewDefault creates a Classifier with the built-in signature table.
func NewDefault() *Classifier {
	return New(DefaultSignatures)
}

// IsBot reports whether the user-agent looks automated.
// An empty user-agent is classified as a bot: real browsers always send one,
// and failing closed keeps the non-cloaked path in front of unknown clients.
func (c *Classifier) IsBot(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}

	ua := strings.ToLower(userAgent)
	for _, sig := range c.signatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
