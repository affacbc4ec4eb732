// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litcorpus/internal/httputil"
)

// DOI resolvers. Declared as vars so tests can substitute httptest servers;
// Deps.DOIBase overrides doiBase per mapper.
var (
	doiBase    = "https://doi.org/"
	ieeeCSBase = "https://doi.ieeecomputersociety.org/"

	// ieeeXploreHost is where doi.org sends IEEE DOIs. Those are resolved
	// again through the Computer Society resolver, which serves the PDFs.
	ieeeXploreHost = "ieeexplore.ieee.org"
)

// resolver follows DOI redirects to the publisher landing page.
type resolver struct {
	doiBase   string
	client    *http.Client
	userAgent string
	throttle  *httputil.Throttle
	logger    *slog.Logger
}

func newResolver(d Deps) *resolver {
	return &resolver{doiBase: d.DOIBase, client: d.Client, userAgent: d.UserAgent, throttle: d.Throttle, logger: d.Logger}
}

// resolve follows the redirects of rawURL and returns the final URL. HEAD
// is tried first; servers rejecting it with 403, 405 or 501 are asked again
// with GET. A non-2xx final status is returned as a *httputil.StatusError.
func (r *resolver) resolve(ctx context.Context, rawURL string) (*url.URL, error) {
	resp, err := r.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		r.logger.Debug("HEAD rejected, retrying with GET", "url", rawURL, "status", resp.StatusCode)
		resp, err = r.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			return nil, err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rawURL, err)
	}
	r.logger.Debug("resolved", "url", rawURL, "resolved", resp.Request.URL.String())
	return resp.Request.URL, nil
}

// resolveDOI resolves doi through doi.org, switching to the Computer
// Society resolver when doi.org lands on IEEE Xplore.
func (r *resolver) resolveDOI(ctx context.Context, doi string) (*url.URL, error) {
	u, err := r.resolve(ctx, r.doiBase+doi)
	if err != nil {
		return nil, err
	}
	if u.Host == ieeeXploreHost {
		r.logger.Debug("rewriting IEEE Xplore DOI to computer.org", "doi", doi)
		return r.resolve(ctx, ieeeCSBase+doi)
	}
	return u, nil
}

// getDOI fetches the landing page of doi with the same IEEE rewrite as
// resolveDOI. The caller closes the response body.
func (r *resolver) getDOI(ctx context.Context, doi string) (*http.Response, error) {
	resp, err := r.get(ctx, r.doiBase+doi)
	if err != nil {
		return nil, err
	}
	if resp.Request.URL.Host == ieeeXploreHost {
		resp.Body.Close()
		r.logger.Debug("rewriting IEEE Xplore DOI to computer.org", "doi", doi)
		return r.get(ctx, ieeeCSBase+doi)
	}
	return resp, nil
}

func (r *resolver) get(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := r.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	return resp, nil
}

func (r *resolver) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	if err := r.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	r.logger.Debug("request", "method", method, "url", rawURL)
	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	return resp, nil
}

// lastSegment returns the final non-empty element of a URL path.
func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// segmentAfter returns the path element following marker, or "".
func segmentAfter(p, marker string) string {
	i := strings.Index(p, marker)
	if i < 0 {
		return ""
	}
	rest := p[i+len(marker):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
