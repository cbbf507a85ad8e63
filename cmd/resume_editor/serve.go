package main

import (
	"fmt"
	"log"

	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/fetch"
	"github.com/jonathan/resume-editor/internal/ingestion"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the analysis and editing endpoints.

Configuration is read from the environment and, with --config, a JSON file. Environment
values take priority. DATABASE_URL enables analysis history and the job page cache;
JWT_SECRET enables signed-in users.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	ttl, err := cfg.SessionTTLDuration()
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	deps := server.Dependencies{
		Sessions: editor.NewStore(ttl),
		Analyzer: analysis.NewService(client),
	}

	extractor := extraction.NewExtractor(client)
	extractor.Verbose = cfg.Verbose
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = cfg.UseBrowser
	fetchOpts.Verbose = cfg.Verbose
	fetcher := fetch.NewFetcher(fetchOpts)
	preparer := &ingestion.Preparer{Extractor: extractor, Fetcher: fetcher}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		deps.Repo = database
		preparer.Fetcher = fetch.NewCachedFetcher(database, fetcher, fetch.DefaultCacheTTL)
	} else {
		log.Println("[serve] DATABASE_URL not set: analysis history is disabled")
	}
	deps.Ingest = preparer

	if jwtCfg := cfg.JWT(); jwtCfg != nil {
		deps.Tokens = server.NewJWTService(jwtCfg).AsTokenValidator()
	}

	srv, err := server.New(serverConfig(cfg), deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequireAuth:    cfg.RequireAuth,
		TemplatePath:   cfg.Template,
	}
}
