package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetracking/models"
	"timetracking/payroll"
)

type PaycheckRepository struct {
	db *gorm.DB
}

// upsertColumns are overwritten when the period already has a paycheck.
var upsertColumns = []string{
	"pay_date", "pay_type", "hourly_rate", "salary_monthly", "total_hours", "overtime_hours",
	"overtime_multiplier", "base_pay", "overtime_pay", "bonus_amount", "allowance_amount",
	"gross_pay", "tax_rate", "social_rate", "pension_rate", "other_rate", "tax_amount",
	"social_amount", "pension_amount", "other_deduction_amount", "total_deductions", "net_pay",
	"employer_social_rate", "employer_pension_rate", "employer_other_rate",
	"employer_social_amount", "employer_pension_amount", "employer_other_amount",
	"status", "payment_method", "updated_at",
}

// Upsert inserts or overwrites the paycheck for (user, year, month). The
// last writer wins. p is reloaded afterwards, so on overwrite it carries
// the stored row's ID instead of the one assigned before the insert.
func (r *PaycheckRepository) Upsert(ctx context.Context, p *models.Paycheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "period_year"}, {Name: "period_month"},
			},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(p).Error
		if err != nil {
			return err
		}

		var stored models.Paycheck
		err = tx.Where("user_id = ? AND period_year = ? AND period_month = ?", p.UserID, p.PeriodYear, p.PeriodMonth).
			First(&stored).Error
		if err != nil {
			return err
		}
		*p = stored
		return nil
	})
}

// Find returns the saved paycheck for a period, or nil.
func (r *PaycheckRepository) Find(ctx context.Context, userID uuid.UUID, p payroll.Period) (*models.Paycheck, error) {
	var pc models.Paycheck
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_year = ? AND period_month = ?", userID, p.Year, p.Month).
		First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (r *PaycheckRepository) ListForPeriod(ctx context.Context, p payroll.Period) ([]models.Paycheck, error) {
	var out []models.Paycheck
	err := r.db.WithContext(ctx).
		Where("period_year = ? AND period_month = ?", p.Year, p.Month).
		Find(&out).Error
	return out, err
}

func (r *PaycheckRepository) ListForYear(ctx context.Context, userID uuid.UUID, year int) ([]models.Paycheck, error) {
	var out []models.Paycheck
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_year = ?", userID, year).
		Order("period_month").Find(&out).Error
	return out, err
}

// YearToDate sums the saved paychecks of a year.
func (r *PaycheckRepository) YearToDate(ctx context.Context, userID uuid.UUID, year int) (payroll.YearToDate, error) {
	ps, err := r.ListForYear(ctx, userID, year)
	if err != nil {
		return payroll.YearToDate{}, err
	}
	return payroll.SumYearToDate(ps), nil
}
