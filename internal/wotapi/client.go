package wotapi

import (
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

	"wotmaps-api/internal/metrics"
	"wotmaps-api/internal/region"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	accountInfoPath = "/wot/account/info/"
	accountFields   = "account_id,nickname,statistics.all.battles"
	maxResponseSize = 1 << 20
)

var (
	// ErrInvalidApplicationID means the API rejected our application id. This
	// is a deployment problem, not something the player can fix.
	ErrInvalidApplicationID = errors.New("invalid application credentials")

	// ErrAccountNotFound means the API answered but has no data for the
	// requested account.
	ErrAccountNotFound = errors.New("account not found")
)

// credentialErrors are the error messages the API uses for rejected
// application or access credentials.
var credentialErrors = map[string]bool{
	"INVALID_APPLICATION_ID": true,
	"INVALID_ACCESS_TOKEN":   true,
}

// AppID is the application id issued by the Wargaming developer room.
type AppID string

// AccountStatistics is the subset of public account data the service needs.
type AccountStatistics struct {
	AccountID uint64
	Nickname  string
	Battles   uint32
}

// ErrorDetail is the error member of an API error envelope.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Value   any    `json:"value"`
}

// UpstreamError is any API error other than a credential rejection. Its
// text is meant for logs only.
type UpstreamError struct {
	Detail ErrorDetail
}

func (e *UpstreamError) Error() string {
	if e.Detail.Field != "" {
		return fmt.Sprintf("account API error %d %s (field %s)", e.Detail.Code, e.Detail.Message, e.Detail.Field)
	}
	return fmt.Sprintf("account API error %d %s", e.Detail.Code, e.Detail.Message)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *ErrorDetail    `json:"error"`
}

type accountInfo struct {
	AccountID  uint64 `json:"account_id"`
	Nickname   string `json:"nickname"`
	Statistics struct {
		All struct {
			Battles uint32 `json:"battles"`
		} `json:"all"`
	} `json:"statistics"`
}

// Client talks to the public World of Tanks API of each region.
type Client struct {
	registry   *region.Registry
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *zap.Logger
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRequestRate caps outgoing requests to perSecond, shared by all
// regions. The API enforces a per-application request budget.
func WithRequestRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a new account API client
func NewClient(registry *region.Registry, httpClient *http.Client, recorder metrics.Recorder, logger *zap.Logger, opts ...Option) *Client {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	c := &Client{
		registry:   registry,
		httpClient: httpClient,
		metrics:    recorder,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPublicAccountInfo fetches the public statistics of accountID. Results
// are never cached and failures are never retried.
func (c *Client) GetPublicAccountInfo(ctx context.Context, r region.Region, appID AppID, accountID uint64) (*AccountStatistics, error) {
	endpoint, err := c.registry.JoinEndpoint(r, accountInfoPath)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatUint(accountID, 10)
	form := url.Values{
		"application_id": {string(appID)},
		"account_id":     {id},
		"fields":         {accountFields},
	}

	var data map[string]*accountInfo
	if err := c.post(ctx, endpoint, form, &data); err != nil {
		return nil, fmt.Errorf("account info for %d in %s: %w", accountID, r, err)
	}

	info, ok := data[id]
	if !ok || info == nil {
		return nil, fmt.Errorf("account info for %d in %s: %w", accountID, r, ErrAccountNotFound)
	}

	return &AccountStatistics{
		AccountID: info.AccountID,
		Nickname:  info.Nickname,
		Battles:   info.Statistics.All.Battles,
	}, nil
}

// post submits form to endpoint and decodes the data member of a successful
// envelope into out.
func (c *Client) post(ctx context.Context, endpoint *url.URL, form url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for request budget: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency(metrics.ServiceAccountAPI, time.Since(start))
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	switch env.Status {
	case "ok":
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
		return nil
	case "error":
		if env.Error == nil {
			return &UpstreamError{Detail: ErrorDetail{Code: resp.StatusCode, Message: "error envelope without detail"}}
		}
		if credentialErrors[env.Error.Message] {
			c.logger.Error("Account API rejected application credentials",
				zap.String("message", env.Error.Message),
				zap.String("field", env.Error.Field))
			return ErrInvalidApplicationID
		}
		return &UpstreamError{Detail: *env.Error}
	default:
		return fmt.Errorf("unexpected response status %q (HTTP %d)", env.Status, resp.StatusCode)
	}
}
