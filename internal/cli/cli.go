// Package cli implements questctl, a terminal client for questd that keeps
// its token pair in a local SQLite file between runs.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/questboard/internal/credstore"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// Version is overridden at build time with -ldflags "-X ...".
var Version = "v0.1.0"

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

const usage = `usage: questctl [flags] <command> [args]

commands:
  register <username> <password> [display name]
  login <username> <password>
  logout
  me
  orgs
  quests [organization id]
  quest <quest id>
  contribute <quest id> <step id> <amount>

flags:
`

// refreshClock is implemented by credential stores that know when the
// session's access token was last replaced.
type refreshClock interface {
	LastRefreshed(ctx context.Context) (time.Time, error)
}

// Runner executes one questctl command against a Gateway.
type Runner struct {
	Gateway *questsdk.Gateway
	Out     io.Writer
}

// Run dispatches args[0] to its command.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	p := newPrinter(r.Out)
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		if len(rest) < 2 {
			return fmt.Errorf("%w: register <username> <password> [display name]", ErrUsage)
		}
		req := questsdk.RegisterRequest{
			Username:    rest[0],
			Password:    rest[1],
			DisplayName: strings.Join(rest[2:], " "),
		}
		if _, err := r.Gateway.Register(ctx, req); err != nil {
			return err
		}
		p.printf("registered and logged in as %s\n", p.title.Render(req.Username))

	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("%w: login <username> <password>", ErrUsage)
		}
		if _, err := r.Gateway.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		p.printf("logged in as %s\n", p.title.Render(rest[0]))

	case "logout":
		if err := r.Gateway.Logout(ctx); err != nil {
			// Credentials are gone either way.
			p.printf("%s\n", p.muted.Render("server did not confirm logout: "+describe(err)))
		}
		p.printf("logged out\n")

	case "me":
		me, err := r.Gateway.Me(ctx)
		if err != nil {
			return err
		}
		p.profile(me)
		if clock, ok := r.Gateway.Credentials().(refreshClock); ok {
			if at, err := clock.LastRefreshed(ctx); err == nil && !at.IsZero() {
				p.printf("  token:  refreshed %s\n", at.Local().Format("2006-01-02 15:04:05"))
			}
		}

	case "orgs":
		orgs, err := r.Gateway.ListOrganizations(ctx)
		if err != nil {
			return err
		}
		p.organizations(orgs)

	case "quests":
		orgID := ""
		if len(rest) > 0 {
			orgID = rest[0]
		}
		quests, err := r.Gateway.ListQuests(ctx, orgID)
		if err != nil {
			return err
		}
		if len(quests) == 0 {
			p.printf("%s\n", p.muted.Render("no quests"))
		}
		for _, q := range quests {
			p.questLine(q)
		}

	case "quest":
		if len(rest) != 1 {
			return fmt.Errorf("%w: quest <quest id>", ErrUsage)
		}
		q, err := r.Gateway.GetQuest(ctx, rest[0])
		if err != nil {
			return err
		}
		p.quest(q)

	case "contribute":
		if len(rest) != 3 {
			return fmt.Errorf("%w: contribute <quest id> <step id> <amount>", ErrUsage)
		}
		amount, err := strconv.ParseFloat(rest[2], 64)
		if err != nil {
			return fmt.Errorf("%w: amount %q is not a number", ErrUsage, rest[2])
		}
		q, err := r.Gateway.Contribute(ctx, rest[0], rest[1], amount)
		if err != nil {
			return err
		}
		p.quest(q)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	return nil
}

// Main runs questctl and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := LoadConfig()

	fs := flag.NewFlagSet("questctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "questd base URL")
	fs.StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "credential database file")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slogx.New(slogx.Config{
		Service: "questctl",
		Version: Version,
		Env:     "cli",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  stderr,
	})

	creds, err := openCredentials(cfg.CredentialsFile)
	if err != nil {
		logger.Error("failed to open credential store", "file", cfg.CredentialsFile, "error", err)
		newPrinter(stderr).failure(err)
		return 1
	}
	defer func() { _ = creds.Close() }()

	client := questsdk.NewSDKClient(cfg.BaseURL)
	client.HTTPClient.Timeout = cfg.Timeout

	r := &Runner{Gateway: questsdk.NewGateway(client, creds), Out: stdout}
	if err := r.Run(ctx, fs.Args()); err != nil {
		if errors.Is(err, ErrUsage) {
			_, _ = fmt.Fprintln(stderr, err)
			fs.Usage()
			return 2
		}
		newPrinter(stderr).failure(err)
		return 1
	}

	return 0
}

func openCredentials(path string) (*credstore.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return credstore.Open(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
}

// describe turns an error into a message for the terminal.
func describe(err error) string {
	if errors.Is(err, questsdk.ErrUnauthorized) {
		return "not logged in or session expired, run `questctl login`"
	}

	var apiErr *questsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return err.Error()
}
