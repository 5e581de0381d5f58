package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobhunt-assistant/internal/config"
	"github.com/jonathan/jobhunt-assistant/internal/server"
)

var (
	servePort      int
	serveExportDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running resume optimization workflows.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 8080)")
	serveCmd.Flags().StringVar(&serveExportDir, "export-dir", "exports", "Directory for exported resume files")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ag, closeClient, err := buildAgents(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DatabaseURL: cfg.DatabaseURL,
		ExportDir:   serveExportDir,
	}, ag)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
