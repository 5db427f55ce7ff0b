package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"time"

	"wotmaps-api/internal/metrics"
	"wotmaps-api/internal/models"
	"wotmaps-api/internal/openid"
	"wotmaps-api/internal/region"
	"wotmaps-api/internal/request"
	"wotmaps-api/internal/wotapi"
	"wotmaps-api/pkg/errors"

	"go.uber.org/zap"
)

// AssertionVerifier confirms OpenID assertions with their provider.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion *openid.Assertion) (*openid.VerifiedAccount, error)
}

// AccountFetcher reads public account statistics.
type AccountFetcher interface {
	GetPublicAccountInfo(ctx context.Context, r region.Region, appID wotapi.AppID, accountID uint64) (*wotapi.AccountStatistics, error)
}

// NonceStore remembers which assertions were already exchanged.
type NonceStore interface {
	MarkNonceUsed(ctx context.Context, r region.Region, nonce string, ttl time.Duration) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(accountID uint64) (string, error)
}

// AuthSettings are the tunables of the authentication pipeline.
type AuthSettings struct {
	AppID           wotapi.AppID
	RequiredBattles uint32
	NonceTTL        time.Duration
}

// AuthHandler exchanges an OpenID assertion for a session token
type AuthHandler struct {
	registry *region.Registry
	verifier AssertionVerifier
	accounts AccountFetcher
	nonces   NonceStore
	tokens   TokenIssuer
	settings AuthSettings
	metrics  metrics.Recorder
	logger   *zap.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(
	registry *region.Registry,
	verifier AssertionVerifier,
	accounts AccountFetcher,
	nonces NonceStore,
	tokens TokenIssuer,
	settings AuthSettings,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *AuthHandler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthHandler{
		registry: registry,
		verifier: verifier,
		accounts: accounts,
		nonces:   nonces,
		tokens:   tokens,
		settings: settings,
		metrics:  recorder,
		logger:   logger,
	}
}

// authenticateForm decodes the relayed assertion. The openid.* field set is
// open ended, so it cannot be described with struct tags.
type authenticateForm struct {
	registry  *region.Registry
	assertion *openid.Assertion
}

func (f *authenticateForm) DecodeForm(values url.Values) error {
	assertion, err := openid.ParseAssertion(values, f.registry)
	if err != nil {
		return err
	}
	f.assertion = assertion
	return nil
}

func (f *authenticateForm) Validate() error {
	return f.assertion.Validate()
}

// HandleAuthenticate handles POST /api/authenticate
// @Summary     Exchange an OpenID assertion for a session token
// @Description Verifies a positive OpenID 2.0 assertion with the Wargaming identity provider, checks the account's battle count and issues a session token.
// @Tags        auth
// @Accept      application/x-www-form-urlencoded
// @Produce     application/json
// @Param       openid.mode           formData string true "Must be id_res"
// @Param       openid.op_endpoint    formData string true "Identity provider endpoint, selects the region"
// @Param       openid.claimed_id     formData string true "Claimed identity URL"
// @Param       openid.identity       formData string true "Identity URL"
// @Param       openid.response_nonce formData string true "Provider nonce"
// @Param       openid.assoc_handle   formData string true "Association handle"
// @Param       openid.signed         formData string true "Signed field list"
// @Param       openid.sig            formData string true "Signature"
// @Param       openid.return_to      formData string true "Return URL"
// @Success     200 {object} models.AuthenticateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/authenticate [post]
func (h *AuthHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &authenticateForm{registry: h.registry}
	if err := request.DecodeForm(r, form); err != nil {
		sendDecodeError(w, h.logger, err)
		return
	}
	assertion := form.assertion

	account, err := h.verifier.Verify(ctx, assertion)
	if err != nil {
		h.fail(w, "Failed to verify identity", err, zap.String("region", string(assertion.Region)))
		return
	}
	if account == nil {
		h.metrics.RecordAuthentication(metrics.OutcomeRejected)
		sendError(w, errors.ErrIdentityRejected)
		return
	}

	first, err := h.nonces.MarkNonceUsed(ctx, assertion.Region, assertion.ResponseNonce(), h.settings.NonceTTL)
	if err != nil {
		h.fail(w, "Failed to record assertion nonce", err)
		return
	}
	if !first {
		h.logger.Warn("Replayed assertion",
			zap.String("region", string(assertion.Region)),
			zap.Uint64("account_id", account.AccountID),
		)
		h.metrics.RecordAuthentication(metrics.OutcomeReplayed)
		sendError(w, errors.ErrAssertionReplayed)
		return
	}

	stats, err := h.accounts.GetPublicAccountInfo(ctx, assertion.Region, h.settings.AppID, account.AccountID)
	if stderrors.Is(err, wotapi.ErrAccountNotFound) {
		h.metrics.RecordAuthentication(metrics.OutcomeNotFound)
		sendError(w, errors.ErrAccountNotFound)
		return
	}
	if err != nil {
		h.fail(w, "Failed to fetch account info", err, zap.Uint64("account_id", account.AccountID))
		return
	}

	if stats.Battles < h.settings.RequiredBattles {
		h.metrics.RecordAuthentication(metrics.OutcomeNotEnoughBattles)
		sendError(w, errors.WithDetails(errors.ErrNotEnoughBattles, models.NotEnoughBattlesDetail{
			Required: h.settings.RequiredBattles,
		}))
		return
	}

	token, err := h.tokens.Issue(account.AccountID)
	if err != nil {
		h.fail(w, "Failed to issue token", err)
		return
	}

	h.logger.Info("Issued session token",
		zap.String("region", string(assertion.Region)),
		zap.Uint64("account_id", account.AccountID),
		zap.Uint32("battles", stats.Battles),
	)
	h.metrics.RecordAuthentication(metrics.OutcomeIssued)
	sendJSON(w, http.StatusOK, models.AuthenticateResponse{Token: token})
}

func (h *AuthHandler) fail(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	h.metrics.RecordAuthentication(metrics.OutcomeError)
	sendError(w, errors.Wrap(err, errors.ErrInternalServer))
}
