package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/ferhanaltun7/butce-tracker/internal/extract"
	"github.com/ferhanaltun7/butce-tracker/internal/llm"
	"github.com/ferhanaltun7/butce-tracker/internal/ocr"
	"github.com/ferhanaltun7/butce-tracker/internal/tracker"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Local development keeps its keys in a .env file
	_ = godotenv.Load()

	fs := ff.NewFlagSet("butce-tracker")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "butce-tracker.db", "Database file path")
		visionKey   = fs.StringLong("vision-key", "", "Google Cloud Vision API key (or set GOOGLE_CLOUD_VISION_API_KEY env var)")
		parserType  = fs.StringLong("parser", "openai", "LLM parser: 'openai', 'gemini' or 'none'")
		openaiKey   = fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		openaiBase  = fs.StringLong("openai-base", "", "OpenAI-compatible API base URL")
		openaiModel = fs.StringLong("openai-model", "gpt-4o-mini", "OpenAI model name")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		appSecret   = fs.StringLong("app-secret", "", "Shared secret for the scan endpoints (or set APP_SHARED_SECRET env var)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BUTCE_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := tracker.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize OCR. Without a key, scan endpoints return empty extractions.
	var ocrClient ocr.Client
	ocrKey := *visionKey
	if ocrKey == "" {
		ocrKey = os.Getenv("GOOGLE_CLOUD_VISION_API_KEY")
	}
	if ocrKey != "" {
		slog.Info("Initializing Vision OCR...")
		ocrClient, err = ocr.NewVision(ocrKey)
		if err != nil {
			slog.Error("Failed to initialize Vision OCR", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("No Vision API key configured, OCR disabled")
	}

	// Initialize LLM parser based on type
	var parser llm.Parser
	switch *parserType {
	case "openai":
		apiKey := *openaiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			slog.Warn("No OpenAI API key configured, falling back to regex extraction")
			break
		}
		slog.Info("Initializing OpenAI parser...", "model", *openaiModel)
		parser, err = llm.NewOpenAI(apiKey, *openaiBase, *openaiModel)
		if err != nil {
			slog.Error("Failed to initialize OpenAI", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Warn("No Gemini API key configured, falling back to regex extraction")
			break
		}
		slog.Info("Initializing Gemini parser...", "model", *geminiModel)
		parser, err = llm.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Info("LLM parsing disabled, using regex extraction only")
	default:
		slog.Error("Invalid parser type", "type", *parserType, "valid", "openai, gemini or none")
		os.Exit(1)
	}
	if parser != nil {
		defer parser.Close()
	}

	// Initialize service
	extractor := extract.NewExtractor(parser)
	service := tracker.NewService(db, ocrClient, extractor)

	// Initialize server
	basicAuth := tracker.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	secret := *appSecret
	if secret == "" {
		secret = os.Getenv("APP_SHARED_SECRET")
	}
	server := tracker.NewServer(service, basicAuth, secret)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
