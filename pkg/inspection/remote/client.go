package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/patchview/pkg/buildinfo"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/observability"
)

const (
	// InspectionPath is the route serving snapshots.
	InspectionPath = "/inspection"

	// HealthPath is the liveness route.
	HealthPath = "/healthz"

	// RequestIDHeader carries the per-request identifier.
	RequestIDHeader = "X-Request-ID"

	// DefaultTimeout bounds a single snapshot request.
	DefaultTimeout = 5 * time.Second
)

// Client fetches snapshots from a [Handler].
type Client struct {
	endpoint *url.URL
	http     *http.Client
	logger   *log.Logger
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://localhost:7070". A nil httpClient uses one with [DefaultTimeout].
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %q", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + InspectionPath

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{endpoint: u, http: httpClient, logger: logger}, nil
}

// Endpoint returns the URL snapshots are fetched from.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// Fetch performs one snapshot request.
func (c *Client) Fetch(ctx context.Context) (inspection.Inspection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return inspection.Inspection{}, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set(RequestIDHeader, uuid.NewString())

	hooks := observability.HTTP()
	host, path := c.endpoint.Host, c.endpoint.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return inspection.Inspection{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch inspection")
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		se := &errors.StatusError{StatusCode: resp.StatusCode, URL: c.endpoint.String()}
		return inspection.Inspection{}, errors.Wrap(se.Code(), se, "fetch inspection")
	}
	return inspection.Read(resp.Body)
}

// RequestInspection fetches a snapshot in the background. Failures are
// logged and close the channel without a value.
func (c *Client) RequestInspection(ctx context.Context) <-chan inspection.Inspection {
	ch := make(chan inspection.Inspection, 1)
	go func() {
		defer close(ch)
		in, err := c.Fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("inspection request failed", "url", c.endpoint.String(), "err", err)
			}
			return
		}
		ch <- in
	}()
	return ch
}

// Ensure Client implements Source.
var _ inspection.Source = (*Client)(nil)
