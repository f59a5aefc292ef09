package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
)

// RobotsGate answers allow/deny for URLs on one origin. A gate whose
// policy could not be loaded fails open: every URL is allowed, because a
// transient robots.txt fetch failure must not silently stop discovery.
type RobotsGate struct {
	group *robotstxt.Group
}

// LoadRobots fetches and parses robots.txt for the origin of originURL.
// It never fails: any fetch or parse problem is logged at warning level
// and produces a fail-open gate. A 404 policy allows everything.
func LoadRobots(ctx context.Context, client *http.Client, originURL, userAgent string) *RobotsGate {
	origin, err := url.Parse(originURL)
	if err != nil || origin.Host == "" {
		slog.Warn("robots.txt skipped, bad origin", "url", originURL, "error", err)
		return &RobotsGate{}
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", origin.Scheme, origin.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &RobotsGate{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("robots.txt unavailable, failing open", "url", robotsURL, "error", err)
		return &RobotsGate{}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("robots.txt read failed, failing open", "url", robotsURL, "error", err)
		return &RobotsGate{}
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		slog.Warn("robots.txt parse failed, failing open", "url", robotsURL, "error", err)
		return &RobotsGate{}
	}

	slog.Debug("robots.txt loaded", "url", robotsURL, "status", resp.StatusCode)
	return &RobotsGate{group: data.FindGroup(userAgent)}
}

// Allowed reports whether the gate's policy permits fetching rawURL.
// Returns true when the policy is unavailable or the URL does not parse.
func (g *RobotsGate) Allowed(rawURL string) bool {
	if g == nil || g.group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return g.group.Test(path)
}
