package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-palette-mcp/internal/config"
	"github.com/ironsheep/image-palette-mcp/internal/logger"
	"github.com/ironsheep/image-palette-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("palette-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("palette-mcp - MCP server for colour palettes and image segmentation")
			fmt.Println()
			fmt.Println("Usage: palette-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Printf("  %s=/path/to/config.json    Load defaults from a JSON file\n", config.EnvConfigPath)
			fmt.Printf("  %s=debug                Set the log level\n", config.EnvLogLevel)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logs go to stderr (stdout is for MCP protocol)
	cfg, err := config.FromEnv()
	if err != nil {
		fatal(logger.New(os.Stderr, zerolog.InfoLevel), err, "failed to load configuration")
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fatal(logger.New(os.Stderr, zerolog.InfoLevel), err, "failed to configure logging")
	}
	log := logger.New(os.Stderr, level)

	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("algorithm", string(cfg.Algorithm)).
		Int("workers", cfg.WorkerCount()).
		Msg("palette MCP server starting")

	srv := server.New(cfg, logger.Component(log, "server"))
	if err := srv.Run(); err != nil {
		fatal(log, err, "server error")
	}
}

func fatal(log zerolog.Logger, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(1)
}
