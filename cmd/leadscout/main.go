// Package main provides the entry point for the leadscout API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadscout",
	Short: "Sales prospecting backend",
	Long:  "Leadscout aggregates company data from scraping, enrichment and email-discovery sources, scores leads and generates AI-assisted outreach via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
