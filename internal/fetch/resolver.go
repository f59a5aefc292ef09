package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HTTPResolver follows redirects for single links: a HEAD request, with a
// GET fallback for servers that reject HEAD.
type HTTPResolver struct {
	client    *http.Client
	userAgent string
}

// NewHTTPResolver creates a link resolver with its own pooled client.
func NewHTTPResolver(userAgent string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		client:    newClient(timeout),
		userAgent: userAgent,
	}
}

// Resolve reports the post-redirect URL and status of url. Servers
// answering HEAD with 405, 403 or 400 get a second chance via GET, whose
// body is discarded unread. Any transport failure yields (url, 0).
func (r *HTTPResolver) Resolve(ctx context.Context, url string) (string, int) {
	resp, err := r.do(ctx, http.MethodHead, url)
	if err != nil {
		slog.Debug("link resolution failed", "url", url, "error", err)
		return url, 0
	}
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMethodNotAllowed, http.StatusForbidden, http.StatusBadRequest:
		getResp, err := r.do(ctx, http.MethodGet, url)
		if err != nil {
			return url, 0
		}
		_ = getResp.Body.Close()
		resp = getResp
	}

	return resp.Request.URL.String(), resp.StatusCode
}

func (r *HTTPResolver) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	return r.client.Do(req)
}

// Close releases idle connections.
func (r *HTTPResolver) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
