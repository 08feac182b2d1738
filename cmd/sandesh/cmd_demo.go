package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sandesh/config"
	"github.com/shashiranjanraj/sandesh/internal/demo"
)

// sandesh demo — walk the bus API end to end on a sample order pipeline.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the order-pipeline walkthrough of the bus API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		return demo.Run()
	},
}
