package main

import (
	"github.com/spf13/cobra"

	"github.com/recipeops/ladle/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ladle",
	Short: "Recipe document ingestion and costing pipeline",
	Long: `Ladle imports recipe documents (CSV, XLSX, DOCX, PDF, images) into
structured, costed recipe records.

The pipeline includes:
  - Format gating with content verification
  - Per-page routing between native text and vision extraction
  - LLM-powered structuring into a recipe schema
  - Unit normalization and ounce conversion
  - Fuzzy mapping against a product catalog with per-line costing`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.ladle/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "ladle home directory (default: ~/.ladle)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(initCmd)
}
