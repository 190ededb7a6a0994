package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocrlab-io/ocrlab/internal/cli"
	"github.com/ocrlab-io/ocrlab/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ocrlabd",
		Short: "OCR Lab daemon",
		Long:  "OCR Lab daemon for running the API server, processing workers and admin commands",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ProcessCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
