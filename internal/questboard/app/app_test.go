package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

func TestApplicationServesWiredRouter(t *testing.T) {
	cfg := Config{
		Issuer:               "questboard-test",
		DatabaseFile:         filepath.Join(t.TempDir(), "questboard.db"),
		Pepper:               "pepper",
		AccessTTL:            time.Minute,
		RefreshTTL:           time.Hour,
		LegacyErrors:         true,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	gw := questsdk.NewGateway(questsdk.NewSDKClient(srv.URL), questsdk.NewMemoryCredentials())

	health, err := gw.Client().Health(ctx)
	require.NoError(t, err)
	require.Equal(t, BuildVersion, health.Version)

	_, err = gw.Register(ctx, questsdk.RegisterRequest{Username: "founder", Password: "correct-horse"})
	require.NoError(t, err)

	me, err := gw.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "organizer", me.Role)

	// Legacy mode answers a bad bearer with 200 and a statusCode body.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		StatusCode int `json:"statusCode"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, http.StatusUnauthorized, body.StatusCode)
}

func TestRunShutsDownWhenContextIsCancelled(t *testing.T) {
	application, err := New(Config{
		Issuer:               "questboard-test",
		DatabaseFile:         filepath.Join(t.TempDir(), "questboard.db"),
		AccessTTL:            time.Minute,
		RefreshTTL:           time.Hour,
		Env:                  "test",
		LogLevel:             "error",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
