// ABOUTME: Entry point for the authgate authentication gateway
// ABOUTME: Serves the token endpoint or requests a token from a remote gateway

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/openexec/authgate/internal/auth"
	"github.com/openexec/authgate/internal/backend"
	"github.com/openexec/authgate/internal/config"
	"github.com/openexec/authgate/internal/gateway"
	"github.com/openexec/authgate/internal/gather"
	"github.com/openexec/authgate/internal/resolver"
	"github.com/openexec/authgate/internal/token"
	"github.com/openexec/authgate/internal/tokenstore"
	"github.com/openexec/authgate/internal/wire"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
             _   _                  _
  __ _ _   _| |_| |__   __ _  __ _| |_ ___
 / _' | | | | __| '_ \ / _' |/ _' | __/ _ \
| (_| | |_| | |_| | | | (_| | (_| | ||  __/
 \__,_|\__,_|\__|_| |_|\__, |\__,_|\__\___|
                       |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: AUTHGATE_CONFIG env var > XDG_CONFIG_HOME/authgate/gateway.yaml > ~/.config/authgate/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("AUTHGATE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "authgate", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: authgate <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve             Start the gateway server")
		fmt.Println("  token <backend>   Request a token from a running gateway")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "token":
		err = runToken(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Tokens:  %s (%s)\n", cfg.Token.Type, cfg.Store.Kind)
	fmt.Println()

	reg := backend.NewRegistry(logger)
	if len(cfg.Backends.StaticUsers) > 0 {
		reg.Register("static", backend.NewStatic(cfg.Backends.StaticUsers))
	}
	if len(reg.Names()) == 0 {
		logger.Warn("no authentication backends registered; every request will fail")
	}

	authenticator := auth.New(reg, auth.DefaultFailFloor, logger)

	svc, cleanup, err := buildTokenService(cfg, authenticator, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting authgate",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"backends", reg.Names(),
		"token_type", cfg.Token.Type,
	)

	return gateway.NewServer(cfg.Server.HTTPAddr, svc, logger).Run(ctx)
}

// buildTokenService assembles the token manager selected by token.type.
func buildTokenService(cfg *config.Config, a *auth.Authenticator, logger *slog.Logger) (gateway.Service, func(), error) {
	if cfg.Token.Type == config.TokenTypeJWT {
		return token.NewSignedManager(a, []byte(cfg.Token.JWTSecret), cfg.Token.TTL, logger), func() {}, nil
	}

	var (
		store tokenstore.Store
		err   error
	)
	switch cfg.Store.Kind {
	case config.StoreKindSQLite:
		store, err = tokenstore.NewSQLiteStore(cfg.Store.Path, logger)
	default:
		store, err = tokenstore.NewFileStore(cfg.Store.Dir, logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening token store: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing token store", "error", err)
		}
	}
	return token.NewManager(a, store, cfg.Token.TTL, logger), cleanup, nil
}

// runToken gathers credentials interactively and requests a token from a
// running gateway. The backend's parameter spec must be known locally, so
// the same config file drives both sides.
func runToken(ctx context.Context) error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: authgate token <backend>")
	}
	backendName := os.Args[2]

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg.Logging)

	reg := backend.NewRegistry(logger)
	if len(cfg.Backends.StaticUsers) > 0 {
		reg.Register("static", backend.NewStatic(cfg.Backends.StaticUsers))
	}

	endpoint := os.Getenv("AUTHGATE_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://" + cfg.Server.HTTPAddr
	}

	gatherer := gather.New(reg, cfg.Backends, gather.NewTerminalPrompter())
	r := resolver.New(gatherer, resolver.NewHTTPTransport(endpoint), tokenFilePath(), logger)

	params, err := r.Gather(backendName, nil)
	if err != nil {
		return err
	}

	resp, err := r.RequestToken(ctx, backendName, params)
	if err != nil {
		return err
	}
	if _, ok := resp[wire.KeyToken]; !ok {
		return fmt.Errorf("authentication failed")
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// tokenFilePath returns where the resolver caches issued token ids.
func tokenFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".authgate_token")
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
