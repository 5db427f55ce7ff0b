package wotapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wotmaps-api/internal/region"
	"wotmaps-api/internal/wotapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *wotapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reg, err := region.NewRegistry(map[region.Region][2]string{
		region.EU: {"https://eu.wargaming.net/id/openid/", srv.URL},
	})
	require.NoError(t, err)

	return wotapi.NewClient(reg, srv.Client(), nil, zap.NewNop())
}

func TestGetPublicAccountInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wot/account/info/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "app-123", r.PostForm.Get("application_id"))
		assert.Equal(t, "500123456", r.PostForm.Get("account_id"))
		assert.Contains(t, r.PostForm.Get("fields"), "statistics.all.battles")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","meta":{"count":1},"data":{"500123456":{"account_id":500123456,"nickname":"Tanker","statistics":{"all":{"battles":4321}}}}}`))
	})

	stats, err := client.GetPublicAccountInfo(context.Background(), region.EU, "app-123", 500123456)
	require.NoError(t, err)
	assert.Equal(t, uint64(500123456), stats.AccountID)
	assert.Equal(t, "Tanker", stats.Nickname)
	assert.Equal(t, uint32(4321), stats.Battles)
}

func TestGetPublicAccountInfoNotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null entry", body: `{"status":"ok","meta":{"count":1},"data":{"42":null}}`},
		{name: "missing entry", body: `{"status":"ok","meta":{"count":0},"data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.GetPublicAccountInfo(context.Background(), region.EU, "app", 42)
			assert.ErrorIs(t, err, wotapi.ErrAccountNotFound)
		})
	}
}

func TestGetPublicAccountInfoInvalidApplicationID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","error":{"field":"application_id","message":"INVALID_APPLICATION_ID","code":407,"value":"bad"}}`))
	})

	_, err := client.GetPublicAccountInfo(context.Background(), region.EU, "bad", 42)
	assert.ErrorIs(t, err, wotapi.ErrInvalidApplicationID)
}

func TestGetPublicAccountInfoUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","error":{"field":null,"message":"REQUEST_LIMIT_EXCEEDED","code":407,"value":null}}`))
	})

	_, err := client.GetPublicAccountInfo(context.Background(), region.EU, "app", 42)
	require.Error(t, err)

	var upstream *wotapi.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "REQUEST_LIMIT_EXCEEDED", upstream.Detail.Message)
	assert.Equal(t, 407, upstream.Detail.Code)
	assert.NotErrorIs(t, err, wotapi.ErrInvalidApplicationID)
	assert.NotErrorIs(t, err, wotapi.ErrAccountNotFound)
}

func TestGetPublicAccountInfoDecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := client.GetPublicAccountInfo(context.Background(), region.EU, "app", 42)
	require.Error(t, err)
	assert.NotErrorIs(t, err, wotapi.ErrAccountNotFound)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestGetPublicAccountInfoUnknownRegion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GetPublicAccountInfo(context.Background(), region.NA, "app", 42)
	assert.ErrorIs(t, err, region.ErrUnknownRegion)
}

func TestGetPublicAccountInfoCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","data":{}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPublicAccountInfo(ctx, region.EU, "app", 42)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetPublicAccountInfoRequestRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","data":{"42":{"account_id":42,"nickname":"a","statistics":{"all":{"battles":1}}}}}`))
	}))
	t.Cleanup(srv.Close)

	reg, err := region.NewRegistry(map[region.Region][2]string{
		region.EU: {"https://eu.wargaming.net/id/openid/", srv.URL},
	})
	require.NoError(t, err)

	// One token per hour: the burst covers the first call only.
	client := wotapi.NewClient(reg, srv.Client(), nil, zap.NewNop(), wotapi.WithRequestRate(1.0/3600, 1))

	_, err = client.GetPublicAccountInfo(context.Background(), region.EU, "app", 42)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetPublicAccountInfo(ctx, region.EU, "app", 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "request budget")
}
