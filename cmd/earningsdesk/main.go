// earningsdesk: upcoming earnings dates and market caps for an index universe.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tonywu212005-glitch/sp500-app/internal/config"
	"github.com/tonywu212005-glitch/sp500-app/internal/logger"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "earningsdesk",
	Short: "Upcoming earnings dates and market caps for CAC 40 or S&P 500 companies",
	Long: `earningsdesk lists the companies of an index and resolves, for each one,
the next earnings report date and the market capitalization from public
market data providers. Values that could not be confirmed are shown as
"not confirmed"; demo mode replaces them with clearly labelled placeholders.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // optional .env in the working directory

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}

		if err := logger.Init(logger.Config{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Tracing: cfg.Logging.Tracing,
			Version: version,
		}); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		if cfg.Resolver.DemoMode {
			logger.Warn(cmd.Context(), "demo mode enabled: unresolved earnings dates are replaced by synthetic placeholders")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return logger.Shutdown(ctx)
	},
}

// applyFlags layers persistent flag overrides on top of the loaded config.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		c.Logging.Level = lvl
	}
	if key, _ := flags.GetString("api-key"); key != "" {
		c.Finnhub.APIKey = key
	}
	if flags.Changed("demo") {
		c.Resolver.DemoMode, _ = flags.GetBool("demo")
	}
	if flags.Changed("universe") {
		c.Directory.Universe, _ = flags.GetString("universe")
	}
	return c.Validate()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("api-key", "", "Finnhub API key (prefer FINNHUB_API_KEY)")
	rootCmd.PersistentFlags().Bool("demo", false, "fill unresolved earnings dates with synthetic placeholders")
	rootCmd.PersistentFlags().String("universe", "", "company universe: cac40 or sp500")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(earningsCmd)
	rootCmd.AddCommand(marketcapCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("earningsdesk %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := utils.MarketLocation(cfg.Directory.Universe)
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  earningsdesk — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Today:         %s (%s)\n", utils.FormatDate(utils.Today(time.Now(), loc)), loc)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Universe:      %s (source: %s)\n", cfg.Directory.Universe, cfg.Directory.Source)
		fmt.Printf("    Demo mode:     %v\n", cfg.Resolver.DemoMode)
		fmt.Printf("    Window:        %d days\n", cfg.Resolver.WindowDays)
		fmt.Printf("    Workers:       %d\n", cfg.Resolver.Workers)
		fmt.Printf("    Yahoo:         %v\n", cfg.Yahoo.Enabled)
		fmt.Printf("    Cache:         %s (ttl %s)\n", cfg.Cache.Backend, cfg.Cache.TTL())
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set (set FINNHUB_API_KEY)"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.MarshalRedactedYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
