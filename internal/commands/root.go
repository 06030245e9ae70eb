// Package commands wires the login-etl CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loginflow-systems/login-etl/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "login-etl",
	Short: "Login event ETL batch job",
	Long: `login-etl drains login events from a queue, normalizes and masks
them, suppresses duplicates, and loads the cleaned records into PostgreSQL.

One invocation is one run: the job exits when the queue is drained or on a
hard persistence failure.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load config: %v\n", err)
		os.Exit(1)
	}
}
