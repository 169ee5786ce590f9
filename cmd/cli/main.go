package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocausal/internal"
)

var logger = internal.DefaultLogger

func main() {
	_ = godotenv.Load()
	logger = internal.NewLogger(internal.ParseLogLevel(os.Getenv("LOG_LEVEL")))

	rootCmd := &cobra.Command{
		Use:   "causal-cli",
		Short: "Causal structure discovery (PC and GES) over tabular data",
	}

	rootCmd.AddCommand(
		newDiscoverCmd(),
		newSynthCmd(),
		newMechanismsCmd(),
		newCompareCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
