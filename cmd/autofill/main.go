package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/ai"
	"github.com/v0xg/autofill/internal/config"
	"github.com/v0xg/autofill/internal/crawler"
	"github.com/v0xg/autofill/internal/history"
	"github.com/v0xg/autofill/internal/observability"
)

var (
	cfgFile  string
	provider string
	model    string
	verbose  bool
	headless bool
	profile  string
	width    int
	height   int

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "autofill",
		Short: "Fill web forms with AI-generated test data",
		Long: `autofill opens a page in Chromium, detects its fillable form fields,
asks an AI model for realistic test values and writes them into the page.

Example:
  autofill fill https://myapp.com/signup
  autofill fill --pick --record signup.gif https://myapp.com/signup`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./autofill.yaml)")
	pf.StringVar(&provider, "provider", "", "AI provider: gemini, claude, openai (default: from config or gemini)")
	pf.StringVar(&model, "model", "", "Specific model override")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")
	pf.BoolVar(&headless, "headless", false, "Run the browser without a window")
	pf.StringVar(&profile, "profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	pf.IntVar(&width, "width", 0, "Viewport width (default: from config)")
	pf.IntVar(&height, "height", 0, "Viewport height (default: from config)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newFillCmd(),
		newClearCmd(),
		newInspectCmd(),
		newServeCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if provider != "" {
		cfg.AI.Provider = provider
	}
	if model != "" {
		cfg.AI.Model = model
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if profile != "" {
		cfg.Browser.Profile = profile
	}
	if width > 0 {
		cfg.Browser.Width = width
	}
	if height > 0 {
		cfg.Browser.Height = height
	}
	if verbose && cfg.Logger.Level == "info" {
		cfg.Logger.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = observability.NewLogger(cfg.Logger)
	return nil
}

// openBrowser launches the browser and navigates to url.
func openBrowser(ctx context.Context, url string) (*crawler.Browser, error) {
	fmt.Printf("→ Opening %s... ", url)
	browser, err := crawler.Open(ctx, url, crawler.Options{
		Width:      cfg.Browser.Width,
		Height:     cfg.Browser.Height,
		Timeout:    cfg.Browser.Timeout,
		Headless:   cfg.Browser.Headless,
		ProfileDir: cfg.Browser.Profile,
	}, logger)
	if err != nil {
		fmt.Println("failed")
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	info, err := browser.Info(ctx)
	if err != nil {
		fmt.Println("done")
		return browser, nil
	}
	fmt.Printf("done (%d form elements on page)\n", info.Inputs)
	logVerbose("  Title: %s", info.Title)
	logVerbose("  Forms: %d, single page app: %v", info.Forms, info.IsSPA)
	return browser, nil
}

func newProvider(ctx context.Context) (ai.Provider, error) {
	return ai.NewProvider(ctx, ai.Config{
		Provider:    cfg.AI.Provider,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey(),
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, logger)
}

func openHistory() (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, fmt.Errorf("failed to resolve history path: %w", err)
		}
	}
	return history.Open(path, cfg.History.MaxSize, cfg.History.HintSize)
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
