// Package linkcheck audits bookmark URLs and fills the link-audit fields
// of domain.Bookmark.
package linkcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/utils"
)

// Result is the outcome of checking one URL.
type Result struct {
	Status      int    // 0 when no response was received
	Available   bool   // status below 400
	RedirectURL string // Location header of a 3xx answer
	Err         error  // transport failure
}

// Checker issues HEAD requests without following redirects.
type Checker struct {
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
}

// New returns a checker giving each URL at most timeout.
func New(timeout time.Duration) *Checker {
	return &Checker{
		client:  newClient(timeout),
		timeout: timeout,
		now:     time.Now,
	}
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 0,
				}).DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Check probes url. Servers refusing HEAD get a GET instead.
func (c *Checker) Check(ctx context.Context, url string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.do(ctx, http.MethodHead, url)
	if res.Status == http.StatusMethodNotAllowed || res.Status == http.StatusNotImplemented {
		res = c.do(ctx, http.MethodGet, url)
	}
	return res
}

func (c *Checker) do(ctx context.Context, method, url string) Result {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "pathways-linkcheck")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer utils.Close(resp.Body)

	res := Result{
		Status:    resp.StatusCode,
		Available: resp.StatusCode < http.StatusBadRequest,
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		res.RedirectURL = resp.Header.Get("Location")
	}
	return res
}

// Audit checks b.URL and writes the result into b's audit fields.
func (c *Checker) Audit(ctx context.Context, b *domain.Bookmark) Result {
	res := c.Check(ctx, b.URL)
	Apply(b, res, c.now())
	return res
}

// Apply stores res in b as of at.
func Apply(b *domain.Bookmark, res Result, at time.Time) {
	b.ClearAudit()

	checked := at.UnixMilli()
	b.LastChecked = &checked

	available := res.Available && res.Err == nil
	b.Available = &available

	if res.Status != 0 {
		status := res.Status
		b.Status = &status
	}
	if res.RedirectURL != "" {
		redirect := res.RedirectURL
		b.RedirectURL = &redirect
	}
	if res.Err != nil {
		msg := res.Err.Error()
		b.CheckError = &msg
	}
}
