package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagemd/pagemd/internal/completion"
	"github.com/pagemd/pagemd/internal/config"
	"github.com/pagemd/pagemd/internal/database"
	"github.com/pagemd/pagemd/internal/log"
	"github.com/pagemd/pagemd/internal/model"
	"github.com/pagemd/pagemd/internal/pipeline"
	"github.com/pagemd/pagemd/internal/report"
	"github.com/pagemd/pagemd/internal/source"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file-or-url>",
		Short: "Convert a PDF document to Markdown",
		Long: `Convert renders each page of a PDF to an image, transcribes it with a
vision-capable language model, and assembles the results into one Markdown
document named after the source file.

Pages are transcribed concurrently by default. A page that fails to
transcribe is skipped with a warning; the remaining pages still produce a
document. With --maintain-format, pages are processed one at a time and each
transcription receives the previous page's output as formatting context.

The API key is read from --api-key, the PAGEMD_API_KEY environment variable,
or a .env file in the current directory.

Examples:
  # Convert a local PDF
  pagemd convert report.pdf

  # Convert a remote document
  pagemd convert https://example.com/files/report.pdf

  # Keep table and heading style consistent across pages
  pagemd convert --maintain-format report.pdf

  # Use Gemini instead of an OpenAI-compatible endpoint
  pagemd convert --provider gemini --model gemini-2.0-flash report.pdf

  # Use a named profile from the .pagemd file
  pagemd convert --profile openrouter report.pdf

Profile file (.pagemd) example:
  defaults:
    model: gpt-4o-mini
  profiles:
    openrouter:
      baseURL: https://openrouter.ai/api/v1/chat/completions
      model: anthropic/claude-sonnet-4
    gemini:
      provider: gemini
      model: gemini-2.0-flash`,
		Args: cobra.ExactArgs(1),
		RunE: runConvertCmd,
	}

	// Completion backend flags
	cmd.Flags().StringP("provider", "p", config.DefaultProvider,
		"Completion backend: openai (any OpenAI-compatible endpoint) or gemini")
	cmd.Flags().StringP("model", "M", config.DefaultModel,
		"Model identifier passed to the backend")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Chat-completions endpoint (openai provider only)")
	cmd.Flags().StringP("api-key", "k", "",
		"API key for the completion endpoint (default: PAGEMD_API_KEY env)")

	// Processing flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of pages transcribed in parallel")
	cmd.Flags().BoolP("maintain-format", "f", false,
		"Process pages serially, passing each page's output to the next as context")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Wall-clock ceiling for the whole run; partial results are kept on expiry")
	cmd.Flags().IntP("quality", "q", config.DefaultImageQuality,
		"JPEG quality (1-100) for rendered pages")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", "output",
		"Directory for the generated Markdown document (empty to skip writing)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run report (mutually exclusive with --json)")
	cmd.Flags().String("report", "",
		"Write the run report to the specified file instead of stdout")

	// Configuration flags
	cmd.Flags().StringP("config", "c", "",
		"Profile file path (default: .pagemd in current or home directory)")
	cmd.Flags().String("profile", "",
		"Named profile from the profile file to apply")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	// Build config from profile file and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential masking
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Bound the whole run by the configured timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runConvert(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the profile file, environment, and flags.
// Precedence, lowest to highest: defaults, profile file, environment, flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Source = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	// Load a .env file if one exists so PAGEMD_API_KEY can live there.
	_ = godotenv.Load() //nolint:errcheck // A missing .env file is fine

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load provider profiles from the profile file.
	// If user explicitly specified a profile file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("profile file not found: %s", cfg.ConfigFilePath)
	}

	cfg.Profile, err = cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	if cfg.Profile != "" && cfg.Profiles == nil {
		return nil, fmt.Errorf("profile %q requested but no profile file found", cfg.Profile)
	}
	if cfg.Profiles != nil {
		cfg.Apply(cfg.Profiles.GetProfile(cfg.Profile))
	}

	// Explicit flags override profile values. Changed() keeps a profile's
	// setting intact when the user left the flag at its default.
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(cfg.Provider)
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory
	cfg.HistoryDir = config.XDGDataDir()

	return cfg, nil
}

// applyFlagOverrides copies explicitly set flag values onto the config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("provider") {
		if cfg.Provider, err = flags.GetString("provider"); err != nil {
			return err
		}
	}
	if flags.Changed("model") {
		if cfg.Model, err = flags.GetString("model"); err != nil {
			return err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("maintain-format") {
		if cfg.MaintainFormat, err = flags.GetBool("maintain-format"); err != nil {
			return err
		}
	}

	// The remaining flags have no profile-file counterpart; read them directly.
	if cfg.APIKey, err = flags.GetString("api-key"); err != nil {
		return err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.ImageQuality, err = flags.GetInt("quality"); err != nil {
		return err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return err
	}

	return nil
}

// apiKeyFromEnv resolves the API key from the environment.
// PAGEMD_API_KEY wins; provider-specific variables are a fallback so existing
// shell setups keep working.
func apiKeyFromEnv(provider string) string {
	if key := os.Getenv("PAGEMD_API_KEY"); key != "" {
		return key
	}
	switch provider {
	case config.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// runConvert executes the conversion run.
func runConvert(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting conversion",
		"source", cfg.Source,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"maintainFormat", cfg.MaintainFormat,
		"concurrency", cfg.Concurrency,
	)

	start := time.Now()

	// Resolve the document to a local file
	localPath := cfg.Source
	if source.IsRemote(cfg.Source) {
		fetchDir, err := os.MkdirTemp("", "pagemd-fetch-*")
		if err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
		defer os.RemoveAll(fetchDir) //nolint:errcheck // Best effort cleanup

		fmt.Printf("Downloading %s...\n", cfg.Source)
		localPath, err = source.Fetch(ctx, cfg.Source, fetchDir)
		if err != nil {
			return err
		}
	}

	// Rasterize the document to per-page images
	rasterizer := source.NewRasterizer(
		source.WithQuality(cfg.ImageQuality),
		source.WithLogger(logger),
	)
	defer func() {
		if err := rasterizer.Cleanup(); err != nil {
			logger.Warn("failed to clean up page images", "error", err)
		}
	}()

	pages, err := rasterizer.Rasterize(ctx, localPath)
	if err != nil {
		return err
	}
	fmt.Printf("Rasterized %d pages\n", len(pages))

	// Create the completion backend
	client, err := completion.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	// Process all pages
	processor := pipeline.NewProcessor(client,
		pipeline.WithMaintainFormat(cfg.MaintainFormat),
		pipeline.WithProcessorLogger(logger),
	)
	scheduler := pipeline.NewScheduler(processor,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithSerial(cfg.MaintainFormat),
		pipeline.WithSchedulerLogger(logger),
	)

	results, runErr := scheduler.Run(ctx, pages)
	if runErr != nil {
		// Timeout or interrupt: keep whatever completed and say so.
		logger.Warn("run interrupted, keeping partial results", "error", runErr)
		fmt.Fprintf(os.Stderr, "Run interrupted (%v); writing partial results.\n", runErr)
	}

	// Aggregate and persist
	run := report.Aggregate(cfg.Source, results, start)
	document := report.Document(run)

	if cfg.OutputDir != "" {
		path, err := report.SaveDocument(run, document, cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}

	// Output the run report
	if err := outputReport(cfg, run); err != nil {
		logger.Error("report output failed", "error", err)
	}

	// Record the run in the history database
	if cfg.SaveHistory {
		if err := saveRunHistory(ctx, cfg, run, logger); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}

	return runErr
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, run *model.RunResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(run)
	return err
}

// saveRunHistory records the completed run in the history database.
func saveRunHistory(ctx context.Context, cfg *config.Config, run *model.RunResult, logger *slog.Logger) error {
	db, err := database.Open(cfg.HistoryDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}

	logger.Info("run recorded in history", "id", id, "source", run.Source)
	return nil
}
