package middleware

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
)

// Defaults for the production marketing site and local development.
const (
	DefaultCanonicalOrigin = "https://www.eventsummit.pt"
	DefaultPreviewSuffix   = ".netlify.app"
)

var defaultDevOrigins = []string{"http://localhost:8888", "http://localhost:3000"}

// CORSPolicy decides which Access-Control-Allow-Origin value a response
// carries. Unknown origins are never reflected; they fall back to the
// canonical production origin so the header always names a real site.
type CORSPolicy struct {
	canonical     string
	allowed       map[string]struct{}
	previewSuffix string
}

type CORSOptions struct {
	CanonicalOrigin string
	DevOrigins      []string
	PreviewSuffix   string
}

func NewCORSPolicy(opts CORSOptions) *CORSPolicy {
	canonical := opts.CanonicalOrigin
	if canonical == "" {
		canonical = DefaultCanonicalOrigin
	}
	suffix := opts.PreviewSuffix
	if suffix == "" {
		suffix = DefaultPreviewSuffix
	}
	dev := opts.DevOrigins
	if len(dev) == 0 {
		dev = defaultDevOrigins
	}

	allowed := map[string]struct{}{canonical: {}}
	if v := wwwVariant(canonical); v != "" {
		allowed[v] = struct{}{}
	}
	for _, o := range dev {
		allowed[o] = struct{}{}
	}

	return &CORSPolicy{canonical: canonical, allowed: allowed, previewSuffix: suffix}
}

// IsPreviewOrigin reports whether origin is a hosting-platform preview
// deployment (staging builds get throwaway subdomains under a fixed suffix).
// Anything that does not parse as a URL is not a preview origin.
func (p *CORSPolicy) IsPreviewOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return strings.HasSuffix(u.Hostname(), p.previewSuffix)
}

// AllowedOrigin returns origin unchanged when it is allow-listed or a preview
// deployment, and the canonical production origin otherwise.
func (p *CORSPolicy) AllowedOrigin(origin string) string {
	if _, ok := p.allowed[origin]; ok {
		return origin
	}
	if p.IsPreviewOrigin(origin) {
		return origin
	}
	return p.canonical
}

// Headers composes the fixed CORS header set for a request origin.
func (p *CORSPolicy) Headers(origin string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      p.AllowedOrigin(origin),
		"Access-Control-Allow-Headers":     "Content-Type, Accept",
		"Access-Control-Allow-Methods":     "GET, POST, OPTIONS",
		"Access-Control-Allow-Credentials": "false",
		"Content-Type":                     "application/json",
	}
}

// RateLimitHeaderConfig carries the telemetry context rendered next to a
// rate-limit decision.
type RateLimitHeaderConfig struct {
	Window      time.Duration
	Environment string // development | production
}

// AttachRateLimitHeaders merges rate-limit telemetry into headers and returns
// the same map. The limit is reconstructed from the post-decision remaining
// count: an allowed request already consumed one slot. Pure rendering; the
// limiter middleware enforces the decision.
func AttachRateLimitHeaders(headers map[string]string, rl RateLimitResult, cfg RateLimitHeaderConfig) map[string]string {
	limit := rl.Remaining
	if rl.Allowed {
		limit = rl.Remaining + 1
	}
	headers["X-RateLimit-Limit"] = strconv.Itoa(limit)
	headers["X-RateLimit-Remaining"] = strconv.Itoa(rl.Remaining)
	headers["X-RateLimit-Window"] = strconv.Itoa(int(cfg.Window / time.Second))
	headers["X-RateLimit-Environment"] = cfg.Environment
	return headers
}

// CORSMiddleware applies the policy to every response and answers preflight
// requests before routing or rate limiting see them.
func CORSMiddleware(p *CORSPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			h := c.Response().Header()
			for k, v := range p.Headers(origin) {
				if k == "Content-Type" {
					continue // echo sets the body content type per response
				}
				h.Set(k, v)
			}
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

// wwwVariant returns the same origin with "www." toggled on the host, so the
// apex and www site are both allow-listed from one config value.
func wwwVariant(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return ""
	}
	if strings.HasPrefix(u.Host, "www.") {
		u.Host = strings.TrimPrefix(u.Host, "www.")
	} else {
		u.Host = "www." + u.Host
	}
	return u.String()
}
