package openid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wotmaps-api/internal/openid"
	"wotmaps-api/internal/region"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const confirmed = "is_valid:true\nns:http://specs.openid.net/auth/2.0\n"

type latencyRecorder struct {
	services []string
}

func (r *latencyRecorder) RecordAuthentication(string) {}
func (r *latencyRecorder) RecordPlayedMap()            {}
func (r *latencyRecorder) RecordUpstreamLatency(service string, _ time.Duration) {
	r.services = append(r.services, service)
}

// providerAssertion points an assertion at a fake provider served by handler.
func providerAssertion(t *testing.T, handler http.HandlerFunc, identityPath string) (*openid.Assertion, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := srv.URL + "/id/openid/"
	reg, err := region.NewRegistry(map[region.Region][2]string{
		region.EU: {provider, "https://api.worldoftanks.eu"},
	})
	require.NoError(t, err)

	a, err := openid.ParseAssertion(positiveAssertion(provider, srv.URL+identityPath), reg)
	require.NoError(t, err)

	return a, srv.Client()
}

func TestVerifyConfirmed(t *testing.T) {
	a, httpClient := providerAssertion(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/id/openid/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "check_authentication", r.PostForm.Get(openid.FieldMode))
		assert.Equal(t, "c2lnbmF0dXJl", r.PostForm.Get(openid.FieldSig))
		assert.Equal(t, "2026-10-19T10:00:00ZSQYq1g", r.PostForm.Get(openid.FieldResponseNonce))
		assert.Equal(t, "http://specs.openid.net/auth/2.0", r.PostForm.Get("openid.ns"))
		assert.Len(t, r.PostForm, 10)

		w.Write([]byte(confirmed))
	}, "/id/12345-Foo/")

	recorder := &latencyRecorder{}
	client := openid.NewClient(httpClient, recorder, zap.NewNop())

	account, err := client.Verify(context.Background(), a)

	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, uint64(12345), account.AccountID)
	assert.Equal(t, "Foo", account.Nickname)
	assert.Equal(t, []string{"openid"}, recorder.services)
}

func TestVerifyNotConfirmed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "is_valid false", status: http.StatusOK, body: "is_valid:false\nns:http://specs.openid.net/auth/2.0\n"},
		{name: "missing trailing newline", status: http.StatusOK, body: strings.TrimSuffix(confirmed, "\n")},
		{name: "extra line", status: http.StatusOK, body: confirmed + "invalidate_handle:x\n"},
		{name: "different order", status: http.StatusOK, body: "ns:http://specs.openid.net/auth/2.0\nis_valid:true\n"},
		{name: "empty body", status: http.StatusOK, body: ""},
		{name: "server error", status: http.StatusInternalServerError, body: confirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, httpClient := providerAssertion(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, "/id/12345-Foo/")

			account, err := openid.NewClient(httpClient, nil, zap.NewNop()).Verify(context.Background(), a)

			assert.NoError(t, err)
			assert.Nil(t, account)
		})
	}
}

func TestVerifyConfirmedWithUnexpectedIdentity(t *testing.T) {
	a, httpClient := providerAssertion(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(confirmed))
	}, "/id/Foo/")

	account, err := openid.NewClient(httpClient, nil, zap.NewNop()).Verify(context.Background(), a)

	assert.ErrorIs(t, err, openid.ErrUnexpectedIdentity)
	assert.Nil(t, account)
}

func TestVerifyTransportError(t *testing.T) {
	a, httpClient := providerAssertion(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(confirmed))
	}, "/id/12345-Foo/")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	account, err := openid.NewClient(httpClient, nil, zap.NewNop()).Verify(ctx, a)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, account)
}
