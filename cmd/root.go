// Package cmd holds the timetracking command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetracking/config"
	"timetracking/database"
	"timetracking/payroll"
	"timetracking/utils"
)

const (
	Version = "0.1.0"
	appName = "timetracking"
)

// Execute runs the root command.
func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Employee time tracking and payroll",
		Long: `timetracking records when employees clock in and out, either by hand,
with an NFC card at the door or automatically from their device on the
office network, and turns the month into payroll statements.

Without a subcommand it starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(serveCmd(), statementCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// bootstrap loads the configuration, the logger and the database shared
// by every subcommand.
func bootstrap() (*gorm.DB, error) {
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig
	if err := utils.InitLogger(cfg.LogLevel, cfg.IsDev()); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	utils.Logger.Info("database ready", zap.String("driver", cfg.DBDriver))
	return db, nil
}

func companyFrom(cfg config.Config) payroll.Company {
	return payroll.Company{
		Name:         cfg.CompanyName,
		TaxID:        cfg.CompanyTaxID,
		AddressLine1: cfg.CompanyAddressLine1,
		AddressLine2: cfg.CompanyAddressLine2,
		Currency:     cfg.Currency,
	}
}
