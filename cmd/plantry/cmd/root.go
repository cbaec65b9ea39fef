// Package cmd implements the plantry command-line interface.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plantry/core/internal/config"
	"github.com/plantry/core/internal/db"
	"github.com/plantry/core/internal/logging"
)

// app holds the wired dependencies shared by all subcommands.
type app struct {
	cfg  *config.Config
	log  *logrus.Logger
	repo *db.Repository
	conn *db.DB
}

var shared app

var rootCmd = &cobra.Command{
	Use:   "plantry",
	Short: "Plantry manages a local plant-care database",
	Long: `Plantry tracks plants, care tasks, photos and garden layouts in a
local SQLite database. All changes are queued for synchronization, so the
tool works fully offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logging.New(cfg.LogLevel)

		conn, err := db.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		if err := conn.Setup(); err != nil {
			conn.Close()
			return err
		}

		shared = app{
			cfg:  cfg,
			log:  log,
			repo: db.NewRepository(conn, log, nil),
			conn: conn,
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shared.repo != nil {
			shared.repo.Close()
		}
		if shared.conn != nil {
			shared.conn.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(plantsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(queueCmd)
}
