package questboard_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

const (
	testImageName = "questd-test:latest"

	organizerUsername = "founder"
	organizerPassword = "Founder123!"
)

// TestMain builds the questd image once for the whole suite and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building questd Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up questd Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/questd/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupContainer starts questd with relaxed rate limits and returns its base
// URL. extraEnv overrides the defaults.
func setupContainer(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"QUESTBOARD_ISSUER":           "questboard-e2e",
		"QUESTBOARD_PEPPER":           "e2e-pepper",
		"ENV":                         "test",
		"LOG_LEVEL":                   "info",
		"LOG_FORMAT":                  "json",
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

func newGateway(baseURL string) *questsdk.Gateway {
	return questsdk.NewGateway(questsdk.NewSDKClient(baseURL), questsdk.NewMemoryCredentials())
}

// registerOrganizer registers the first account, which questd makes an
// organizer.
func registerOrganizer(t *testing.T, baseURL string) *questsdk.Gateway {
	t.Helper()

	gw := newGateway(baseURL)
	tokens, err := gw.Register(t.Context(), questsdk.RegisterRequest{
		Username:    organizerUsername,
		Password:    organizerPassword,
		DisplayName: "Founder",
	})
	require.NoError(t, err)
	assertTokenResponse(t, tokens)

	me, err := gw.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "organizer", me.Role)

	return gw
}

func assertTokenResponse(t *testing.T, resp *questsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType)
}
