package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timetracking/archive"
	"timetracking/export"
	"timetracking/metrics"
	"timetracking/models"
	"timetracking/payroll"
	"timetracking/repositories"
	"timetracking/statement"
)

// PayrollService computes, saves and renders monthly payroll.
type PayrollService struct {
	Store   *repositories.Store
	Company payroll.Company
	Archive archive.Archive
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Now     func() time.Time
}

func (s *PayrollService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *PayrollService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Month is one user's view of a period: the sessions, the live total and
// the statement built from either the saved paycheck or current settings.
type Month struct {
	User         models.User
	Period       payroll.Period
	Sessions     []models.Session
	TotalSeconds int64
	Paycheck     *models.Paycheck
	Statement    payroll.Statement
}

// PaycheckForm holds the values shown in the admin paycheck editor.
type PaycheckForm struct {
	OvertimeHours   string `json:"overtime_hours"`
	BonusAmount     string `json:"bonus_amount"`
	AllowanceAmount string `json:"allowance_amount"`
	PaymentMethod   string `json:"payment_method"`
	Status          string `json:"status"`
}

func (m Month) Form() PaycheckForm {
	f := PaycheckForm{
		OvertimeHours:   "0.00",
		BonusAmount:     "0.00",
		AllowanceAmount: "0.00",
		Status:          models.PaycheckDraft,
	}
	if m.Paycheck != nil {
		f.OvertimeHours = m.Paycheck.OvertimeHours.StringFixed(2)
		f.BonusAmount = m.Paycheck.BonusAmount.StringFixed(2)
		f.AllowanceAmount = m.Paycheck.AllowanceAmount.StringFixed(2)
		f.PaymentMethod = m.Paycheck.PaymentMethod
		if m.Paycheck.Status != "" {
			f.Status = m.Paycheck.Status
		}
	}
	if f.PaymentMethod == "" && m.User.PaymentMethod != nil {
		f.PaymentMethod = *m.User.PaymentMethod
	}
	if f.PaymentMethod == "" {
		f.PaymentMethod = models.DefaultPaymentMethod
	}
	return f
}

func managerName(u models.User) string {
	if u.Manager != nil {
		return u.Manager.Name
	}
	return ""
}

// Month loads everything needed to show or print a user's period.
func (s *PayrollService) Month(ctx context.Context, userID uuid.UUID, p payroll.Period) (*Month, error) {
	u, err := s.Store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := p.Range()
	sessions, err := s.Store.Sessions.ListForUser(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	seconds := payroll.TotalSeconds(payroll.SpansOf(sessions), s.now())

	pc, err := s.Store.Paychecks.Find(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	ytd, err := s.Store.Paychecks.YearToDate(ctx, userID, p.Year)
	if err != nil {
		return nil, err
	}

	hours := payroll.RoundHours(payroll.HoursFor(pc, seconds))
	st := payroll.BuildStatement(payroll.StatementInput{
		User:        *u,
		ManagerName: managerName(*u),
		Period:      p,
		TotalHours:  hours,
		Paycheck:    pc,
		YTD:         ytd,
		Company:     s.Company,
	})

	return &Month{
		User:         *u,
		Period:       p,
		Sessions:     sessions,
		TotalSeconds: seconds,
		Paycheck:     pc,
		Statement:    st,
	}, nil
}

// SavePaycheck snapshots the user's configuration for the period and
// upserts it. Hours come from the sessions, rounded; a draft counts open
// sessions up to now, a final paycheck ignores them. A final paycheck is
// also archived when an archive is configured; archive failures are only
// logged because the paycheck itself is already stored.
func (s *PayrollService) SavePaycheck(ctx context.Context, userID uuid.UUID, p payroll.Period, adj payroll.Adjustments) (*models.Paycheck, error) {
	u, err := s.Store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, end := p.Range()
	sessions, err := s.Store.Sessions.ListForUser(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	spans := payroll.SpansOf(sessions)
	seconds := payroll.TotalSeconds(spans, s.now())
	if payroll.NormalizeStatus(adj.Status) == models.PaycheckFinal {
		seconds = payroll.ClosedSeconds(spans)
	}

	pc := payroll.Snapshot(*u, p, payroll.SecondsToHours(seconds), adj)
	if err := s.Store.Paychecks.Upsert(ctx, &pc); err != nil {
		return nil, err
	}
	s.Metrics.PaycheckSaved(pc.Status)
	s.logger().Info("paycheck saved",
		zap.String("user", u.LDAPUsername),
		zap.String("period", p.String()),
		zap.String("status", pc.Status),
		zap.String("net_pay", pc.NetPay.StringFixed(2)),
	)

	if pc.Status == models.PaycheckFinal && s.Archive != nil {
		if err := s.archive(ctx, userID, p); err != nil {
			s.logger().Error("failed to archive statement",
				zap.String("user", u.LDAPUsername),
				zap.String("period", p.String()),
				zap.Error(err),
			)
		}
	}
	return &pc, nil
}

func (s *PayrollService) archive(ctx context.Context, userID uuid.UUID, p payroll.Period) error {
	pdf, _, login, err := s.render(ctx, userID, p)
	if err != nil {
		return err
	}
	return s.Archive.Store(ctx, archive.StatementKey(login, p), pdf)
}

// PDF renders the statement of a period and the download file name.
func (s *PayrollService) PDF(ctx context.Context, userID uuid.UUID, p payroll.Period) ([]byte, string, error) {
	pdf, name, _, err := s.render(ctx, userID, p)
	return pdf, name, err
}

func (s *PayrollService) render(ctx context.Context, userID uuid.UUID, p payroll.Period) ([]byte, string, string, error) {
	m, err := s.Month(ctx, userID, p)
	if err != nil {
		return nil, "", "", err
	}
	login := m.User.LDAPUsername
	return statement.Render(m.Statement, s.now()), statement.FileName(login, p), login, nil
}

// OverviewRow is one user in the admin paychecks list.
type OverviewRow struct {
	User      repositories.UserMonth
	Statement payroll.Statement
	Status    string
	Hours     decimal.Decimal
}

// PeriodOverview builds a statement for every user. Saved hours win over
// live ones; year-to-date values are left empty here.
func (s *PayrollService) PeriodOverview(ctx context.Context, p payroll.Period) ([]OverviewRow, error) {
	start, end := p.Range()
	users, err := s.Store.Users.ListWithMonthSeconds(ctx, start, end, s.now())
	if err != nil {
		return nil, err
	}
	paychecks, err := s.Store.Paychecks.ListForPeriod(ctx, p)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*models.Paycheck, len(paychecks))
	for i := range paychecks {
		byUser[paychecks[i].UserID] = &paychecks[i]
	}

	rows := make([]OverviewRow, 0, len(users))
	for _, um := range users {
		pc := byUser[um.ID]
		hours := payroll.RoundHours(payroll.HoursFor(pc, um.MonthSeconds))
		st := payroll.BuildStatement(payroll.StatementInput{
			User:        um.User,
			ManagerName: um.ManagerName,
			Period:      p,
			TotalHours:  hours,
			Paycheck:    pc,
			Company:     s.Company,
		})
		rows = append(rows, OverviewRow{User: um, Statement: st, Status: st.Status, Hours: hours})
	}
	return rows, nil
}

// Export returns the period overview as an .xlsx workbook.
func (s *PayrollService) Export(ctx context.Context, p payroll.Period) ([]byte, error) {
	rows, err := s.PeriodOverview(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]export.Row, len(rows))
	for i, r := range rows {
		out[i] = export.Row{
			Login:   r.User.LDAPUsername,
			Name:    r.User.Name,
			Status:  r.Status,
			PayType: r.Statement.Amounts.PayType,
			Hours:   r.Hours,
			Amounts: r.Statement.Amounts,
		}
	}
	return export.PeriodWorkbook(p, out)
}
