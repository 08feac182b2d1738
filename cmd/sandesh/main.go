package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sandesh",
	Short: "Sandesh — in-process typed event bus",
	Long:  "Sandesh is an in-process, type-keyed publish/subscribe bus for Go. Use this CLI to walk the API and load-test the dispatcher.",
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(stressCmd)
}
