package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/questboard/internal/credstore"
	httpapi "github.com/aussiebroadwan/questboard/internal/questboard/http"
	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/internal/questboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

func newBackend(t *testing.T) string {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	key, err := cryptox.NewSigningKey()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("cli-test", key.PEM)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	router := httpapi.NewRouter(keys, jwtx.NewVerifierEdDSA(keys, "cli-test"), "test", st, slogx.Discard(), false)
	router.AuthService = &service.AuthService{
		Store:      st,
		Signer:     signer,
		Hasher:     cryptox.PasswordHasher{},
		Issuer:     "cli-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	router.UserService = &service.UserService{Store: st}
	router.OrganizationService = &service.OrganizationService{Store: st}
	router.QuestService = &service.QuestService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, baseURL, credentials string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"-url", baseURL, "-credentials", credentials}, args...)
	code := Main(context.Background(), full, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestSessionPersistsAcrossRuns(t *testing.T) {
	baseURL := newBackend(t)
	credentials := filepath.Join(t.TempDir(), "nested", "credentials.db")

	res := run(t, baseURL, credentials, "register", "founder", "correct-horse", "Quest", "Giver")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "registered and logged in as founder")

	store, err := credstore.Open(fmt.Sprintf("file:%s", credentials))
	require.NoError(t, err)
	require.NotEmpty(t, store.AccessToken(context.Background()))
	require.NotEmpty(t, store.RefreshToken(context.Background()))
	require.NoError(t, store.Close())

	res = run(t, baseURL, credentials, "me")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "founder")
	require.Contains(t, res.stdout, "(organizer)")
	require.Contains(t, res.stdout, "Quest Giver")
	require.Contains(t, res.stdout, "token:  refreshed ")

	res = run(t, baseURL, credentials, "logout")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "logged out")

	res = run(t, baseURL, credentials, "me")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "not logged in")
}

func TestQuestCommands(t *testing.T) {
	baseURL := newBackend(t)
	ctx := context.Background()

	organizer := questsdk.NewGateway(questsdk.NewSDKClient(baseURL), questsdk.NewMemoryCredentials())
	_, err := organizer.Register(ctx, questsdk.RegisterRequest{Username: "founder", Password: "correct-horse"})
	require.NoError(t, err)

	org, err := organizer.CreateOrganization(ctx, questsdk.CreateOrganizationRequest{Name: "Food Bank"})
	require.NoError(t, err)
	quest, err := organizer.CreateQuest(ctx, questsdk.CreateQuestRequest{
		OrganizationID: org.ID,
		Title:          "Winter drive",
		Steps: []questsdk.CreateStepRequest{
			{Title: "Raise funds", TargetValue: 2000},
			{Title: "Find drivers", TargetValue: 4},
		},
	})
	require.NoError(t, err)

	credentials := filepath.Join(t.TempDir(), "credentials.db")
	res := run(t, baseURL, credentials, "register", "helper", "correct-horse")
	require.Equal(t, 0, res.code, res.stderr)

	res = run(t, baseURL, credentials, "orgs")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Food Bank")

	res = run(t, baseURL, credentials, "quests", org.ID)
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Winter drive")
	require.Contains(t, res.stdout, "[....................]   0%")

	res = run(t, baseURL, credentials, "contribute", quest.ID, quest.Steps[0].ID, "1000")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "$1000 of $2000 raised")
	require.Contains(t, res.stdout, "0 of 4 volunteers")
	require.Contains(t, res.stdout, "[#####...............]  25%")

	res = run(t, baseURL, credentials, "quest", quest.ID)
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "[##########..........]  50%")

	res = run(t, baseURL, credentials, "quest", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "error:")
}

func TestUsageErrors(t *testing.T) {
	baseURL := newBackend(t)
	credentials := filepath.Join(t.TempDir(), "credentials.db")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"dance"}},
		{"login without password", []string{"login", "founder"}},
		{"non-numeric amount", []string{"contribute", "q", "s", "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, baseURL, credentials, tt.args...)
			require.Equal(t, 2, res.code)
			require.Contains(t, res.stderr, "usage: questctl")
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	require.Contains(t, describe(&questsdk.AuthError{}), "not logged in")
	require.Equal(t, "quest not found", describe(&questsdk.APIError{StatusCode: 404, Code: "not_found", Message: "quest not found"}))
	require.Equal(t, "boom", describe(fmt.Errorf("boom")))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("QUESTCTL_BASE_URL", "https://quests.example")
	t.Setenv("QUESTCTL_CREDENTIALS_FILE", "/tmp/creds.db")
	t.Setenv("QUESTCTL_TIMEOUT", "3")
	t.Setenv("LOG_LEVEL", "")

	cfg := LoadConfig()
	require.Equal(t, "https://quests.example", cfg.BaseURL)
	require.Equal(t, "/tmp/creds.db", cfg.CredentialsFile)
	require.Equal(t, 3*time.Second, cfg.Timeout)
	require.Equal(t, "warn", cfg.LogLevel)
}
