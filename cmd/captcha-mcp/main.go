package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/auth"
	"github.com/ironsheep/captcha-tools-mcp/internal/config"
	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
	"github.com/ironsheep/captcha-tools-mcp/internal/httpapi"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
	"github.com/ironsheep/captcha-tools-mcp/internal/server"
	"github.com/ironsheep/captcha-tools-mcp/internal/solver"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// envConfigPath names the config file when --config is not given.
const envConfigPath = "CAPTCHA_MCP_CONFIG"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "captcha-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Handle --version and --help before anything touches the config
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "captcha-tools-mcp %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return nil
		case "--help", "-h", "help":
			printHelp(stdout)
			return nil
		}
	}

	fs := flag.NewFlagSet("captcha-mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(envConfigPath), "path to a YAML config file")
	httpMode := fs.Bool("http", false, "serve the REST API instead of MCP over stdio")
	issueFor := fs.String("issue-token", "", "print a bearer token for the given subject and exit")
	tokenTTL := fs.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by --issue-token")
	configOut := fs.String("write-config", "", "write the effective config as YAML to this path and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Resolve(*configPath, os.Getenv)
	if err != nil {
		return err
	}

	if *configOut != "" {
		if err := config.Save(*configOut, cfg); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote config to %s\n", *configOut)
		return nil
	}

	if *issueFor != "" {
		token, err := auth.IssueToken(cfg.HTTP.JWTSecret, *issueFor, cfg.HTTP.JWTAudience, *tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Debug("starting captcha-tools-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	slv, err := newSolver(cfg, logger)
	if err != nil {
		return err
	}

	if *httpMode {
		return serveHTTP(cfg, slv, logger)
	}

	srv := server.New(slv, logger, Version)
	return srv.Serve(stdin, stdout)
}

func newSolver(cfg *config.Config, logger *zap.Logger) (*solver.Solver, error) {
	var (
		store *corpus.Store
		err   error
	)
	if cfg.DatasetPath != "" {
		store, err = corpus.Open(cfg.DatasetPath)
	} else {
		store, err = corpus.Default()
	}
	if err != nil {
		return nil, err
	}

	logger.Info("reference corpus loaded",
		zap.Int("entries", store.Len()),
		zap.Int("glyph_height", store.GlyphHeight()),
		zap.String("dataset", datasetName(cfg.DatasetPath)),
	)
	return solver.New(store, solver.WithLogger(logger))
}

func datasetName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func serveHTTP(cfg *config.Config, slv *solver.Solver, logger *zap.Logger) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.NewRouter(slv, httpapi.Options{
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		JWTSecret:      cfg.HTTP.JWTSecret,
		JWTAudience:    cfg.HTTP.JWTAudience,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("HTTP API listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Bool("auth", cfg.HTTP.JWTSecret != ""),
	)
	if err := httpapi.Serve(srv, cfg.HTTP.ShutdownTimeout, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "captcha-tools-mcp - MCP server that solves six-character text CAPTCHAs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: captcha-mcp [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config PATH           YAML config file")
	fmt.Fprintln(w, "  --http                  Serve the REST API instead of MCP over stdio")
	fmt.Fprintln(w, "  --issue-token SUBJECT   Print a bearer token for the REST API and exit")
	fmt.Fprintln(w, "  --token-ttl DURATION    Token lifetime (default 24h)")
	fmt.Fprintln(w, "  --write-config PATH     Write the effective config (file + env) and exit")
	fmt.Fprintln(w, "  --version, -v           Print version information")
	fmt.Fprintln(w, "  --help, -h              Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  CAPTCHA_MCP_CONFIG=PATH        Config file when --config is not given")
	fmt.Fprintln(w, "  CAPTCHA_MCP_LOG_LEVEL=debug    Log level")
	fmt.Fprintln(w, "  CAPTCHA_DATASET=PATH           Replace the embedded reference corpus")
	fmt.Fprintln(w, "  CAPTCHA_HTTP_ADDR=:8080        REST listen address")
	fmt.Fprintln(w, "  JWT_SECRET, JWT_AUDIENCE       Require bearer tokens on POST /solve")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without --http the server speaks MCP over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}
