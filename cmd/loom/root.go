package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-loom/pkg/loom"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "A lightweight string-interpolation template engine",
	Long: `Loom expands text templates containing {{ expression }} substitutions,
{{#if}}/{{else}}/{{/if}} conditionals, and {{#each}}/{{/each}} loops
against data loaded from YAML or JSON files.

Rendering never fails: directives that cannot be resolved degrade to
empty text. Use "loom check" to find the problems rendering would hide.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./loom.yaml)")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("cache-max-size", 0,
		"maximum number of cached templates (0 disables caching)")
	rootCmd.PersistentFlags().Duration("cache-ttl", 0,
		"cached template time-to-live (0 means no expiry)")
	rootCmd.PersistentFlags().Int("max-render-depth", 0,
		"maximum block nesting depth")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("cache_max_size", rootCmd.PersistentFlags().Lookup("cache-max-size"))
	_ = viper.BindPFlag("cache_ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("max_render_depth", rootCmd.PersistentFlags().Lookup("max-render-depth"))
}

func initConfig() {
	defaults := loom.DefaultConfig()
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("cache_max_size", defaults.CacheMaxSize)
	viper.SetDefault("cache_ttl", defaults.CacheTTL)
	viper.SetDefault("max_render_depth", defaults.MaxRenderDepth)

	viper.SetEnvPrefix("LOOM")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("loom")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
		}
	}
}

// buildEngine constructs an engine from the resolved flag/env/file
// configuration and installs a logger at the configured level.
func buildEngine() (*loom.Engine, error) {
	cfg := &loom.Config{
		CacheMaxSize:   viper.GetInt("cache_max_size"),
		CacheTTL:       viper.GetDuration("cache_ttl"),
		LogLevel:       viper.GetString("log_level"),
		MaxRenderDepth: viper.GetInt("max_render_depth"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := loom.ConfigureLogging(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}
	return loom.NewWithConfig(cfg), nil
}

func execute() error {
	return rootCmd.Execute()
}

func setVersion(v string) {
	rootCmd.Version = v
}
