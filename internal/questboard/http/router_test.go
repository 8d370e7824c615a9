package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/internal/questboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/questx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

type testServer struct {
	URL  string
	Auth *service.AuthService
}

func newTestServer(t *testing.T, legacy bool) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	key, err := cryptox.NewSigningKey()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", key.PEM)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	auth := &service.AuthService{
		Store:      st,
		Signer:     signer,
		Hasher:     cryptox.PasswordHasher{Pepper: "pepper"},
		Issuer:     "test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	router := NewRouter(keys, jwtx.NewVerifierEdDSA(keys, "test"), "test", st, slogx.Discard(), legacy)
	router.AuthService = auth
	router.UserService = &service.UserService{Store: st}
	router.OrganizationService = &service.OrganizationService{Store: st}
	router.QuestService = &service.QuestService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Auth: auth}
}

func (s *testServer) gateway() *questsdk.Gateway {
	return questsdk.NewGateway(questsdk.NewSDKClient(s.URL), questsdk.NewMemoryCredentials())
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	health, err := srv.gateway().Client().Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ready questsdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestQuestFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	ctx := context.Background()

	organizer := srv.gateway()
	_, err := organizer.Register(ctx, questsdk.RegisterRequest{Username: "olive", Password: "correct horse", DisplayName: "Olive"})
	require.NoError(t, err)

	me, err := organizer.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "organizer", me.Role)
	require.Equal(t, "Olive", me.DisplayName)

	org, err := organizer.CreateOrganization(ctx, questsdk.CreateOrganizationRequest{Name: "Food Bank"})
	require.NoError(t, err)

	quest, err := organizer.CreateQuest(ctx, questsdk.CreateQuestRequest{
		OrganizationID: org.ID,
		Title:          "Winter drive",
		Steps: []questsdk.CreateStepRequest{
			{Title: "Raise funds", TargetValue: 1000},
			{Title: "Drivers", TargetValue: 4},
		},
	})
	require.NoError(t, err)
	require.Equal(t, questx.KindFinancial, quest.Steps[0].Kind)
	require.Equal(t, questx.KindVolunteers, quest.Steps[1].Kind)
	require.Equal(t, 0, quest.Progress)
	require.Equal(t, questx.ColorRed, quest.Color)

	volunteer := srv.gateway()
	_, err = volunteer.Register(ctx, questsdk.RegisterRequest{Username: "victor", Password: "correct horse"})
	require.NoError(t, err)

	t.Run("volunteers cannot create quests", func(t *testing.T) {
		_, err := volunteer.CreateQuest(ctx, questsdk.CreateQuestRequest{OrganizationID: org.ID, Title: "x"})
		var apiErr *questsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("contributions update progress and colour", func(t *testing.T) {
		updated, err := volunteer.Contribute(ctx, quest.ID, quest.Steps[0].ID, 1200)
		require.NoError(t, err)
		require.InDelta(t, 1000.0, updated.Steps[0].CurrentValue, 0.0001)
		require.Equal(t, 100, updated.Steps[0].Progress)
		require.Equal(t, 50, updated.Progress)
		require.Equal(t, questx.ColorOrange, updated.Color)

		updated, err = volunteer.Contribute(ctx, quest.ID, quest.Steps[1].ID, 3)
		require.NoError(t, err)
		require.Equal(t, 75, updated.Steps[1].Progress)
		require.Equal(t, 88, updated.Progress)
		require.Equal(t, questx.ColorGreen, updated.Color)
	})

	t.Run("listing and lookup", func(t *testing.T) {
		quests, err := volunteer.ListQuests(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, quests, 1)

		orgs, err := volunteer.ListOrganizations(ctx)
		require.NoError(t, err)
		require.Len(t, orgs, 1)

		got, err := volunteer.GetOrganization(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, "Food Bank", got.Name)

		_, err = volunteer.GetQuest(ctx, "missing")
		var apiErr *questsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		t.Run(map[bool]string{false: "status 401", true: "legacy 401"}[legacy], func(t *testing.T) {
			srv := newTestServer(t, legacy)
			ctx := context.Background()

			// Issue a pair whose access token expired long ago.
			srv.Auth.Now = func() time.Time { return time.Now().Add(-time.Hour) }
			pair, err := srv.Auth.Register(ctx, "alice", "correct horse", "")
			require.NoError(t, err)
			srv.Auth.Now = nil

			creds := questsdk.NewMemoryCredentials()
			require.NoError(t, creds.SaveAccessToken(ctx, pair.AccessToken))
			require.NoError(t, creds.SaveRefreshToken(ctx, pair.RefreshToken))
			gw := questsdk.NewGateway(questsdk.NewSDKClient(srv.URL), creds)

			me, err := gw.Me(ctx)
			require.NoError(t, err)
			require.Equal(t, "alice", me.Username)

			require.NotEqual(t, pair.AccessToken, creds.AccessToken(ctx))
			require.NotEqual(t, pair.RefreshToken, creds.RefreshToken(ctx))
		})
	}
}

func TestRevokedRefreshClearsCredentials(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	ctx := context.Background()

	gw := srv.gateway()
	pair, err := gw.Register(ctx, questsdk.RegisterRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	alice, err := srv.Auth.Store.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, srv.Auth.Logout(ctx, alice.ID, pair.RefreshToken))

	// Corrupt the access token so the next call is rejected.
	require.NoError(t, gw.Credentials().SaveAccessToken(ctx, "garbage"))

	_, err = gw.Me(ctx)
	require.ErrorIs(t, err, questsdk.ErrUnauthorized)
	require.Empty(t, gw.Credentials().AccessToken(ctx))
	require.Empty(t, gw.Credentials().RefreshToken(ctx))
}

// recordingCredentials remembers every refresh token it was asked to save.
type recordingCredentials struct {
	*questsdk.MemoryCredentials

	mu    sync.Mutex
	saved []string
}

func (c *recordingCredentials) SaveRefreshToken(ctx context.Context, token string) error {
	c.mu.Lock()
	c.saved = append(c.saved, token)
	c.mu.Unlock()
	return c.MemoryCredentials.SaveRefreshToken(ctx, token)
}

func TestLogoutWithExpiredAccessTokenEndsSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	ctx := context.Background()

	creds := &recordingCredentials{MemoryCredentials: questsdk.NewMemoryCredentials()}
	gw := questsdk.NewGateway(questsdk.NewSDKClient(srv.URL), creds)

	_, err := gw.Register(ctx, questsdk.RegisterRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	// The logout call is rejected, so the Gateway rotates the refresh token
	// before retrying it.
	require.NoError(t, creds.SaveAccessToken(ctx, "garbage"))
	require.NoError(t, gw.Logout(ctx))

	require.Empty(t, creds.AccessToken(ctx))
	require.Empty(t, creds.RefreshToken(ctx))

	creds.mu.Lock()
	saved := slices.Clone(creds.saved)
	creds.mu.Unlock()
	require.Len(t, saved, 2, "one token from register, one from the rotation")

	for _, token := range saved {
		_, err := srv.Auth.Refresh(ctx, token)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	}
}

func TestLegacyUnauthorizedShape(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/v1/users/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.EqualValues(t, 401, body["statusCode"])
}

func TestAuthErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	post := func(path, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := post("/v1/auth/register", `{"username":"alice","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = post("/v1/auth/register", `{"username":"alice","password":"correct horse"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post("/v1/auth/login", `{"username":"alice","password":"nope nope"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post("/v1/auth/refresh", `{"refreshToken":"bogus"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post("/v1/auth/login", `{"username":"alice","password":"x","extra":true}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post("/v1/auth/register", `{"username":"b","password":"correct horse"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
