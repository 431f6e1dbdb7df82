// Package siloq is the HTTP client for the Siloq SaaS API.
package siloq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/metrics"
)

const maxResponseBytes = 4 << 20

// Options tunes the client's transport.
type Options struct {
	Timeout time.Duration
	// RPS limits outbound requests per second; zero or negative disables limiting.
	RPS   float64
	Burst int
}

// Client issues calls to the Siloq API. It holds no credentials; every call
// receives them explicitly.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient configures a client with the given options.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
		logger:     logger,
	}
}

// envelope is the response shape of every Siloq endpoint.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// TestConnection verifies that the API is reachable and the key is accepted.
func (c *Client) TestConnection(ctx context.Context, creds entity.Credentials) (*entity.ConnectionInfo, error) {
	var info entity.ConnectionInfo
	if err := c.do(ctx, "siloq.TestConnection", "auth_verify", creds, http.MethodGet, "/auth/verify", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SyncPage pushes one page. The remote side dedupes on payload.ExternalID.
func (c *Client) SyncPage(ctx context.Context, creds entity.Credentials, siteID string, payload *entity.SyncPayload) (*entity.SyncReceipt, error) {
	if siteID == "" {
		return nil, apperror.New(apperror.KindValidation, "siloq.SyncPage", "site id is required")
	}
	var receipt entity.SyncReceipt
	path := fmt.Sprintf("/sites/%s/pages/sync", url.PathEscape(siteID))
	if err := c.do(ctx, "siloq.SyncPage", "pages_sync", creds, http.MethodPost, path, payload, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CreateContentJob enqueues a generation job for a page.
func (c *Client) CreateContentJob(ctx context.Context, creds entity.Credentials, siteID string, pageID int64) (*entity.ContentJob, error) {
	if siteID == "" {
		return nil, apperror.New(apperror.KindValidation, "siloq.CreateContentJob", "site id is required")
	}
	var job entity.ContentJob
	path := fmt.Sprintf("/sites/%s/content-jobs", url.PathEscape(siteID))
	body := map[string]any{"wp_post_id": pageID}
	if err := c.do(ctx, "siloq.CreateContentJob", "content_jobs_create", creds, http.MethodPost, path, body, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, apperror.Permanent("siloq.CreateContentJob", "response did not include a job id", http.StatusOK)
	}
	return &job, nil
}

// GetJobStatus polls a job.
func (c *Client) GetJobStatus(ctx context.Context, creds entity.Credentials, jobID string) (*entity.ContentJob, error) {
	if jobID == "" {
		return nil, apperror.New(apperror.KindValidation, "siloq.GetJobStatus", "job id is required")
	}
	var job entity.ContentJob
	path := "/content-jobs/" + url.PathEscape(jobID)
	if err := c.do(ctx, "siloq.GetJobStatus", "content_jobs_get", creds, http.MethodGet, path, nil, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return &job, nil
}

// GetBusinessProfile reads the site-level business profile.
func (c *Client) GetBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string) (entity.BusinessProfile, error) {
	if siteID == "" {
		return nil, apperror.New(apperror.KindValidation, "siloq.GetBusinessProfile", "site id is required")
	}
	profile := entity.BusinessProfile{}
	path := fmt.Sprintf("/sites/%s/business-profile", url.PathEscape(siteID))
	if err := c.do(ctx, "siloq.GetBusinessProfile", "business_profile_get", creds, http.MethodGet, path, nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveBusinessProfile replaces the site-level business profile.
func (c *Client) SaveBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string, profile entity.BusinessProfile) error {
	if siteID == "" {
		return apperror.New(apperror.KindValidation, "siloq.SaveBusinessProfile", "site id is required")
	}
	path := fmt.Sprintf("/sites/%s/business-profile", url.PathEscape(siteID))
	return c.do(ctx, "siloq.SaveBusinessProfile", "business_profile_put", creds, http.MethodPut, path, profile, nil)
}

// ListSites returns the sites visible to the API key.
func (c *Client) ListSites(ctx context.Context, creds entity.Credentials) ([]entity.Site, error) {
	var sites []entity.Site
	if err := c.do(ctx, "siloq.ListSites", "sites_list", creds, http.MethodGet, "/sites", nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (c *Client) do(ctx context.Context, op, endpoint string, creds entity.Credentials, method, path string, body, out any) error {
	if strings.TrimSpace(creds.BaseURL) == "" || strings.TrimSpace(creds.APIKey) == "" {
		return apperror.New(apperror.KindValidation, op, "API URL and API key are required")
	}
	base, err := url.Parse(strings.TrimRight(creds.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return apperror.New(apperror.KindValidation, op, "API URL is not a valid absolute URL")
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "throttled").Inc()
		return apperror.Transient(op, "request throttled", 0, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		c.logger.Warn("siloq request failed", zap.String("op", op), zap.Error(err))
		return apperror.Transient(op, "could not reach the Siloq API", 0, err)
	}
	defer resp.Body.Close()
	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperror.Transient(op, "failed to read response", resp.StatusCode, err)
	}

	c.logger.Debug("siloq response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return classify(op, resp.StatusCode, remoteMessage(env))
	}
	if decodeErr != nil {
		return apperror.Wrap(apperror.KindRemotePermanent, op, "response is not valid JSON", decodeErr)
	}
	if env.Success != nil && !*env.Success {
		msg := remoteMessage(env)
		if msg == "" {
			msg = "request was rejected"
		}
		return apperror.Permanent(op, msg, resp.StatusCode)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperror.Wrap(apperror.KindRemotePermanent, op, "unexpected response payload", err)
	}
	return nil
}

func remoteMessage(env envelope) string {
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

// classify maps a remote HTTP failure onto an apperror kind.
func classify(op string, status int, message string) error {
	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("Siloq API returned %d", status)
		}
		return apperror.Transient(op, message, status, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if message == "" {
			message = "invalid API credentials"
		}
	case status == http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
	default:
		if message == "" {
			message = fmt.Sprintf("Siloq API returned %d", status)
		}
	}
	return apperror.Permanent(op, message, status)
}

// IsInvalidCredentials reports whether err is a 401/403 from the API.
func IsInvalidCredentials(err error) bool {
	var e *apperror.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
