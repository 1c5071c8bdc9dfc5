package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invodex/internal/client"
)

var (
	apiURL      string
	timeoutSecs int
)

var rootCmd = &cobra.Command{
	Use:   "invodex",
	Short: "Upload invoice documents and browse extracted invoices",
	Long: `invodex is the command line companion to the invodex API server.

It uploads invoice documents (JPEG, PNG, PDF), runs AI extraction
on them, and lets you list, inspect, edit and aggregate the extracted
invoices from the terminal.

The server address is taken from --api-url or the INVODEX_API_URL
environment variable (a .env file in the working directory is loaded
automatically).`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "base URL of the invodex API server")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 120, "request timeout in seconds")
}

func defaultAPIURL() string {
	if v := os.Getenv("INVODEX_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func apiClient() *client.Client {
	return client.New(apiURL, time.Duration(timeoutSecs)*time.Second)
}
