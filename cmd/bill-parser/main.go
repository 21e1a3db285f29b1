package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/SahasransuAcharjya/bill-parser/internal/extraction"
	"github.com/SahasransuAcharjya/bill-parser/internal/invoice"
	"github.com/SahasransuAcharjya/bill-parser/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// scannerOptions selects and configures the text recognizer
type scannerOptions struct {
	kind          string
	tesseractLang string
	geminiKey     string
	geminiModel   string
	ollamaURL     string
	ollamaModel   string
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("bill-parser")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "bill-parser.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./invoices", "Storage directory path")
		scannerType   = fs.StringLong("scanner", "tesseract", "Scanner type: 'tesseract', 'pdftext', 'gemini' or 'ollama'")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, joined with '+' (e.g. eng+hin)")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llama3.2-vision", "Ollama vision model name")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		limits        = limitFlags(fs)
		profilePath   = fs.StringLong("profile", "", "YAML extraction profile (optional)")
		logFormat     = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		debug         = fs.BoolLong("debug", "Enable debug logging")
		extractPath   = fs.StringLong("extract", "", "Extract fields from FILE ('-' for stdin), print JSON and exit")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILL_PARSER"),
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

	if err := setupLogging(*logFormat, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := extraction.DefaultConfig()
	if *profilePath != "" {
		var err error
		cfg, err = extraction.LoadProfile(*profilePath)
		if err != nil {
			slog.Error("Failed to load extraction profile", "path", *profilePath, "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded extraction profile", "path", *profilePath, "window", cfg.Window, "structural", cfg.Structural)
	}
	engine := extraction.NewEngine(cfg)

	opts := scannerOptions{
		kind:          *scannerType,
		tesseractLang: *tesseractLang,
		geminiKey:     *geminiKey,
		geminiModel:   *geminiModel,
		ollamaURL:     *ollamaURL,
		ollamaModel:   *ollamaModel,
	}

	if *extractPath != "" {
		if err := runExtract(os.Stdout, *extractPath, engine, opts); err != nil {
			slog.Error("Extraction failed", "file", *extractPath, "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scanner, err := newScanner(opts)
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", opts.kind, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	invoiceService := invoice.NewService(db, scanner, store, engine)

	// Initialize server
	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServerWithMux(invoiceService, basicAuth, http.NewServeMux(), limits())
	server.SetVersion(version)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"version", version,
		"catalog_version", engine.Version(),
	)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// limitFlags registers the throttling flags; the returned func reads them
// back once fs is parsed
func limitFlags(fs *ff.FlagSet) func() invoice.Limits {
	var (
		maxConcurrent = fs.IntLong("max-concurrent", invoice.DefaultLimits.MaxConcurrent, "Maximum uploads scanned at once")
		rateLimit     = fs.Float64Long("rate-limit", invoice.DefaultLimits.Rate, "Scan requests allowed per second, fractions allowed (0 disables)")
		rateBurst     = fs.IntLong("rate-burst", invoice.DefaultLimits.Burst, "Scan requests allowed in a burst")
	)
	return func() invoice.Limits {
		return invoice.Limits{
			Rate:          *rateLimit,
			Burst:         *rateBurst,
			MaxConcurrent: *maxConcurrent,
		}
	}
}

// setupLogging installs the default slog handler
func setupLogging(format string, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	default:
		return fmt.Errorf("invalid log format %q: want text or json", format)
	}
	return nil
}

// newScanner builds the scanner named by opts.kind
func newScanner(opts scannerOptions) (scanning.Scanner, error) {
	switch opts.kind {
	case "tesseract":
		slog.Info("Initializing Tesseract scanner...", "languages", opts.tesseractLang)
		return scanning.NewTesseract(opts.tesseractLang), nil
	case "pdftext":
		// digital PDFs carry their own text; everything else goes through OCR
		slog.Info("Initializing PDF text scanner with Tesseract fallback...", "languages", opts.tesseractLang)
		return scanning.NewChain(scanning.NewPDFText(), scanning.NewTesseract(opts.tesseractLang)), nil
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := opts.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", opts.geminiModel)
		return scanning.NewGemini(apiKey, opts.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", opts.ollamaURL, "model", opts.ollamaModel)
		return scanning.NewOllama(opts.ollamaURL, opts.ollamaModel)
	default:
		return nil, fmt.Errorf("invalid scanner type %q: want tesseract, pdftext, gemini or ollama", opts.kind)
	}
}

// runExtract prints the fields of one file as JSON. Text files are read as
// is; images and PDFs go through the configured scanner first.
func runExtract(w io.Writer, path string, engine *extraction.Engine, opts scannerOptions) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	text := string(data)
	if contentType := http.DetectContentType(data); !strings.HasPrefix(contentType, "text/") {
		scanner, err := newScanner(opts)
		if err != nil {
			return fmt.Errorf("initializing scanner: %w", err)
		}
		defer scanner.Close()

		text, err = scanner.ScanText(data, contentType)
		if err != nil {
			return fmt.Errorf("scanning input: %w", err)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(engine.Extract(text))
}
