package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timetracking/config"
	"timetracking/payroll"
	"timetracking/repositories"
	"timetracking/services"
	"timetracking/utils"
)

func statementCmd() *cobra.Command {
	var (
		login string
		month string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Render a payroll statement PDF from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := payroll.ParseMonth(month)
			if !ok {
				return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
			}

			db, err := bootstrap()
			if err != nil {
				return err
			}
			defer utils.Sync()

			store := repositories.NewStore(db)
			u, err := store.Users.FindByLogin(cmd.Context(), login)
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("no user with login %q", login)
			}
			if err != nil {
				return err
			}

			svc := &services.PayrollService{Store: store, Company: companyFrom(config.AppConfig)}
			pdf, name, err := svc.PDF(cmd.Context(), u.ID, p)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(pdf)
				return err
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return err
			}
			utils.Logger.Info("statement written", zap.String("file", out), zap.String("user", login))
			return nil
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "Directory login of the employee")
	cmd.Flags().StringVar(&month, "month", "", "Period as YYYY-MM")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default lohnabrechnung_<login>_<month>.pdf)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
