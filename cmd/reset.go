/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YassineKADER/Drawniness-Iot-Project/config"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/db"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
)

// resetCmd is the administrative escape hatch: it drops all stored
// measurements. Deletion is best-effort per measurement.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all stored measurements (users, events, sos)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		influxClient, err := db.Open(cfg)
		if err != nil {
			return err
		}

		influxStore := store.NewInfluxStore(influxClient, cfg.Influx.Database, logger)
		defer influxStore.Close()

		return influxStore.ResetAll(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
