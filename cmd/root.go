package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/lukman83/autovit-sync/config"
	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/httputil"
	"github.com/lukman83/autovit-sync/internal/platform"
	"github.com/lukman83/autovit-sync/internal/stealth"
	"github.com/lukman83/autovit-sync/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autovit",
	Short: "Autovit listing importer, HTTP API & MCP server",
	Long:  "Imports car adverts from autovit.ro into the listings table and serves them to the admin panel and the public site.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("database-url", "", "Database URL: postgres://, libsql:// or a SQLite file path")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: none, cautious, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Bool("headless", false, "Fall back to a headless browser when the static fetch fails")
	rootCmd.PersistentFlags().String("proxy", "", "Comma-separated proxy URLs")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json")
}

func initConfig() {
	cfg = config.DefaultConfig()

	flags := rootCmd.PersistentFlags()
	path, _ := flags.GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultFile
	}
	found, err := cfg.LoadFile(path)
	cobra.CheckErr(err)
	if explicit && !found {
		cobra.CheckErr(fmt.Errorf("config file %s not found", path))
	}
	cobra.CheckErr(cfg.LoadFromEnv())

	// Override from flags
	if v, _ := flags.GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if v, _ := flags.GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if flags.Changed("respect-robots") {
		cfg.RespectRobots, _ = flags.GetBool("respect-robots")
	}
	if flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if v, _ := flags.GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	cobra.CheckErr(cfg.Validate())

	logger, err = telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	cobra.CheckErr(err)
}

// buildHTTPClient creates the stealth-wrapped HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	fpPool := stealth.NewFingerprintPool()
	delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	proxyRotator, err := stealth.ProxyRotatorFromList(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("proxy list: %w", err)
	}

	robotsClient := httputil.NewHTTPClient(nil, cfg.FetchTimeout())
	robots := stealth.NewRobotsChecker(robotsClient, cfg.RespectRobots)

	transport := &stealth.StealthTransport{
		Base:        baseTransport,
		Robots:      robots,
		Fingerprint: fpPool,
		Proxy:       proxyRotator,
		Delay:       delay,
		RateLimiter: limiter,
	}

	return httputil.NewHTTPClient(transport, cfg.FetchTimeout()), nil
}

// buildScraper assembles the configured fetch strategies in order.
func buildScraper() (*autovit.Scraper, error) {
	client, err := buildHTTPClient()
	if err != nil {
		return nil, err
	}
	strategies, err := platform.Build(cfg.Strategies(), platform.StrategyOptions{
		Client:     client,
		MaxRetries: cfg.FetchRetries,
		BrowserBin: cfg.BrowserBin,
		Timeout:    cfg.FetchTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return autovit.NewScraper(strategies...), nil
}
