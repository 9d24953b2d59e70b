// Package main provides the resume_agent command line: evaluate and tailor a résumé to a job
// description, browse the generation history and serve the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_agent",
	Short: "Tailor a resume to a job description with an LLM",
	Long: `Resume Agent analyzes a job description, scores your resume against it, suggests improvements and,
once you approve, iteratively rewrites the resume until a recruiter-style critique approves it.

Configuration is read from --config (YAML or JSON), RESUME_TAILOR_* environment variables and a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
