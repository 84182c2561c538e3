package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fsnd/coffee-shop/config"
)

func TestMain(m *testing.M) {
	os.Setenv("ENVIRONMENT", "test")
	os.Setenv("LOG_LEVEL", "error")

	os.Exit(m.Run())
}

// useTempDatabase points the sqlite store at a fresh file for the duration of the test
func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "coffee.db"))
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("DB_AUTO_MIGRATE", "true")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		logger, err := initLogger(config.LogConfig{Level: "info", Format: "json"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("development console logger", func(t *testing.T) {
		logger, err := initLogger(config.LogConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(-1))
		defer logger.Sync()
	})

	t.Run("invalid log level", func(t *testing.T) {
		logger, err := initLogger(config.LogConfig{Level: "loud", Format: "json"})
		require.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("invalid log format", func(t *testing.T) {
		_, err := initLogger(config.LogConfig{Level: "info", Format: "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("rotating file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "coffeeshop.log")
		logger, err := initLogger(config.LogConfig{
			Level:      "error",
			Format:     "json",
			File:       path,
			MaxSizeMB:  1,
			MaxBackups: 1,
		})
		require.NoError(t, err)

		logger.Error("brew failed")
		require.NoError(t, logger.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "brew failed")
		assert.Contains(t, string(raw), `"timestamp"`)
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "seed", "drinks", "token"})

	migrate, _, err := root.Find([]string{"migrate", "version"})
	require.NoError(t, err)
	assert.Equal(t, "version", migrate.Name())

	list, _, err := root.Find([]string{"drinks", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", list.Name())
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := execute(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestMigrateCommands(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")

	_, err = execute(t, "migrate", "up")
	require.NoError(t, err)

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = execute(t, "migrate", "down")
	require.NoError(t, err)

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")
}

func TestSeedAndListDrinks(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 1, skipped 0")

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 0, skipped 1")

	fixture := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(`drinks:
  - title: flat white
    recipe:
      - {name: espresso, color: brown, parts: 1}
      - {name: milk, color: white, parts: 2}
`), 0o600))

	out, err = execute(t, "seed", "--file", fixture, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1, created 1, skipped 0")

	listed, err := execute(t, "drinks", "list")
	require.NoError(t, err)
	assert.Contains(t, listed, "flat white")
	assert.Contains(t, listed, "1 espresso (brown), 2 milk (white)")
	assert.NotContains(t, listed, "water")

	out, err = execute(t, "drinks", "show", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drink not found")

	match := regexp.MustCompile(`(\d+)\s*\|\s*flat white`).FindStringSubmatch(listed)
	require.Len(t, match, 2)

	out, err = execute(t, "drinks", "show", match[1])
	require.NoError(t, err)
	assert.Contains(t, out, "#"+match[1]+" flat white")
	assert.Contains(t, out, "espresso")
	assert.Contains(t, out, "brown")

	_, err = execute(t, "drinks", "show", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")

	_, err = execute(t, "drinks", "show", "latte")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid drink id")
}

func TestSeedCommand_MissingFixture(t *testing.T) {
	useTempDatabase(t)

	_, err := execute(t, "seed", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		user, pass, _ := r.BasicAuth()
		form = map[string]string{
			"grant_type": r.Form.Get("grant_type"),
			"audience":   r.Form.Get("audience"),
			"client":     user + ":" + pass,
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"brewed-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	t.Setenv("AUTH0_CLIENT_ID", "barista-cli")
	t.Setenv("AUTH0_CLIENT_SECRET", "s3cret")
	t.Setenv("AUTH_AUDIENCE", "drinks")

	out, err := execute(t, "token", "--token-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "brewed-token\n", out)

	assert.Equal(t, "client_credentials", form["grant_type"])
	assert.Equal(t, "drinks", form["audience"])
	assert.Equal(t, "barista-cli:s3cret", form["client"])
}

func TestTokenCommand_RequiresCredentials(t *testing.T) {
	t.Setenv("AUTH0_CLIENT_ID", "")
	t.Setenv("AUTH0_CLIENT_SECRET", "")

	_, err := execute(t, "token", "--token-url", "http://127.0.0.1:1/oauth/token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH0_CLIENT_ID")
}

func TestRunServer_GracefulShutdown(t *testing.T) {
	useTempDatabase(t)

	cfg, err := config.New(context.Background())
	require.NoError(t, err)
	cfg.Server.ShutdownTimeout = 5 * time.Second

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, cfg, zaptest.NewLogger(t), ln)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	// No key source is configured outside production, so protected routes reject everything
	resp, err := http.Get(base + "/drinks-detail")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(base + "/drinks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServer_ProductionWithoutKeys(t *testing.T) {
	useTempDatabase(t)

	cfg, err := config.New(context.Background())
	require.NoError(t, err)
	cfg.Environment = "production"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = runServer(context.Background(), cfg, zaptest.NewLogger(t), ln)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signing key source configured")
}
