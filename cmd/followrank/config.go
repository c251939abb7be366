package main

import (
	"fmt"
	"os"

	"followrank/pkg/config"
	"followrank/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage followrank configuration files.

Configuration is loaded from, in order of priority:
  - Command line flags
  - Environment variables (FOLLOWRANK_*)
  - .env files
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration with all available options.

The file is created as '.followrank.yaml' in the current directory unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".followrank.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Put the accounts to start from in the seed file, one id per line")
	fmt.Println("2. Store a bearer token with 'followrank auth login'")
	fmt.Println("3. Start crawling with 'followrank [max-level]'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var warnings []string
	if _, err := os.Stat(cfg.Crawl.SeedFile); err != nil {
		if _, cpErr := os.Stat(cfg.Crawl.CheckpointFile); cpErr != nil {
			warnings = append(warnings, fmt.Sprintf("neither seed file %s nor checkpoint %s exists", cfg.Crawl.SeedFile, cfg.Crawl.CheckpointFile))
		}
	}
	if cfg.PageRank.TeleportationRate <= 0 || cfg.PageRank.TeleportationRate >= 1 {
		warnings = append(warnings, fmt.Sprintf("teleportation rate %v is outside (0, 1) and will be replaced by 0.1", cfg.PageRank.TeleportationRate))
	}

	for _, warn := range warnings {
		ui.PrintWarning("Warning", warn)
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Followers folder", cfg.Crawl.FollowersDir)
	ui.PrintInfo("Max level", fmt.Sprintf("%d", cfg.Crawl.MaxLevel))
	ui.PrintInfo("Long cooldown", cfg.Crawl.LongCooldown.String())
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}
