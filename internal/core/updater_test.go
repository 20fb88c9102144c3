package core_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"m3m/internal/core"
)

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/garyttierney/me3/releases/latest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUpdater_Check_UpdateAvailable(t *testing.T) {
	srv := releaseServer(t, http.StatusOK,
		`{"tag_name":"v0.9.0","name":"0.9.0","html_url":"https://example.com/rel"}`)

	u := core.NewUpdater(zaptest.NewLogger(t), "garyttierney/me3")
	u.SetBaseURL(srv.URL)

	release, newer, err := u.Check(context.Background(), "0.8.1")
	require.NoError(t, err)
	assert.True(t, newer)
	assert.Equal(t, "0.9.0", release.Version())
	assert.Equal(t, "https://example.com/rel", release.URL)
}

func TestUpdater_Check_UpToDate(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v0.8.1"}`)

	u := core.NewUpdater(zaptest.NewLogger(t), "garyttierney/me3")
	u.SetBaseURL(srv.URL)

	_, newer, err := u.Check(context.Background(), "0.8.1")
	require.NoError(t, err)
	assert.False(t, newer)
}

func TestUpdater_Check_NewerLocalBuild(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v0.8.1"}`)

	u := core.NewUpdater(zaptest.NewLogger(t), "garyttierney/me3")
	u.SetBaseURL(srv.URL)

	_, newer, err := u.Check(context.Background(), "0.10.0")
	require.NoError(t, err)
	assert.False(t, newer)
}

func TestUpdater_Check_NotInstalled(t *testing.T) {
	srv := releaseServer(t, http.StatusOK, `{"tag_name":"v0.8.1"}`)

	u := core.NewUpdater(zaptest.NewLogger(t), "garyttierney/me3")
	u.SetBaseURL(srv.URL)

	release, newer, err := u.Check(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, newer)
	assert.Equal(t, "0.8.1", release.Version())
}

func TestUpdater_Check_ServerError(t *testing.T) {
	srv := releaseServer(t, http.StatusForbidden, `{"message":"rate limited"}`)

	u := core.NewUpdater(zaptest.NewLogger(t), "garyttierney/me3")
	u.SetBaseURL(srv.URL)

	_, _, err := u.Check(context.Background(), "0.8.1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "fetching latest release")
}
