package openid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wotmaps-api/internal/metrics"

	"go.uber.org/zap"
)

const (
	modeCheckAuthentication = "check_authentication"

	// validResponse is the only provider answer accepted as a confirmation.
	validResponse = "is_valid:true\nns:http://specs.openid.net/auth/2.0\n"

	maxResponseSize = 4 << 10
)

// ErrUnexpectedIdentity means the provider confirmed an assertion whose
// identity URL does not have the expected shape.
var ErrUnexpectedIdentity = errors.New("unexpected identity format")

var identityPattern = regexp.MustCompile(`^/id/(\d+)-([^/]+)/$`)

// VerifiedAccount is the account behind a confirmed assertion.
type VerifiedAccount struct {
	AccountID uint64
	Nickname  string
}

// Client verifies assertions directly with the identity provider.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *zap.Logger
}

// NewClient creates a new verification client
func NewClient(httpClient *http.Client, recorder metrics.Recorder, logger *zap.Logger) *Client {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Client{
		httpClient: httpClient,
		metrics:    recorder,
		logger:     logger,
	}
}

// Verify asks the provider whether it issued the assertion. A nil account
// with a nil error means the provider did not confirm it.
func (c *Client) Verify(ctx context.Context, assertion *Assertion) (*VerifiedAccount, error) {
	form := assertion.checkAuthenticationForm()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, assertion.Endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create check_authentication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordUpstreamLatency(metrics.ServiceOpenID, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("request to verify identity failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read check_authentication response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || string(body) != validResponse {
		c.logger.Info("Identity provider did not confirm assertion",
			zap.String("region", string(assertion.Region)),
			zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	return ParseIdentity(assertion.Identity)
}

// ParseIdentity extracts the account id and nickname from an identity URL of
// the form https://<realm>.wargaming.net/id/<account id>-<nickname>/.
func ParseIdentity(identity *url.URL) (*VerifiedAccount, error) {
	match := identityPattern.FindStringSubmatch(identity.Path)
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedIdentity, identity)
	}

	accountID, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: account id %q: %v", ErrUnexpectedIdentity, match[1], err)
	}

	return &VerifiedAccount{
		AccountID: accountID,
		Nickname:  match[2],
	}, nil
}
