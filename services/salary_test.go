package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"timetracking/models"
	"timetracking/payroll"
	"timetracking/repositories"
)

type fakeArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeArchive) Store(_ context.Context, key string, pdf []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, pdf)
	return nil
}

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// workedUser has two hours in March 2024 at 20.00 per hour.
func workedUser(t *testing.T, store *repositories.Store) *models.User {
	t.Helper()
	ctx := context.Background()
	u := createUser(t, store, &models.User{LDAPUsername: "amuster", Name: "Anna Muster", HourlyRate: dp("20.00")})
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	_, _, err := store.Sessions.StartIfNoneOpen(ctx, u.ID, start, models.SourceManual)
	require.NoError(t, err)
	_, err = store.Sessions.StopAllOpen(ctx, u.ID, start.Add(2*time.Hour))
	require.NoError(t, err)
	return u
}

var march = payroll.Period{Year: 2024, Month: 3}

func newPayroll(store *repositories.Store, a *fakeArchive) *PayrollService {
	svc := &PayrollService{
		Store:   store,
		Company: payroll.Company{Name: "Acme AG", Currency: "CHF"},
		Now:     func() time.Time { return time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC) },
	}
	if a != nil {
		svc.Archive = a
	}
	return svc
}

func TestMonthPreviewWithoutPaycheck(t *testing.T) {
	store := setupStore(t)
	u := workedUser(t, store)
	svc := newPayroll(store, nil)

	m, err := svc.Month(context.Background(), u.ID, march)
	require.NoError(t, err)

	assert.Len(t, m.Sessions, 1)
	assert.Equal(t, int64(7200), m.TotalSeconds)
	assert.Nil(t, m.Paycheck)
	assert.Equal(t, payroll.StatusPreview, m.Statement.Status)
	assert.Equal(t, "2.00 h", m.Statement.TotalHours)
	assert.Equal(t, "40.00 CHF", m.Statement.GrossPay)
	assert.Equal(t, "0.00 CHF", m.Statement.YTDGross)

	f := m.Form()
	assert.Equal(t, "0.00", f.BonusAmount)
	assert.Equal(t, models.DefaultPaymentMethod, f.PaymentMethod)
	assert.Equal(t, models.PaycheckDraft, f.Status)
}

func TestSavePaycheckFinalIsArchived(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	u := workedUser(t, store)
	a := &fakeArchive{}
	svc := newPayroll(store, a)

	pc, err := svc.SavePaycheck(ctx, u.ID, march, payroll.Adjustments{
		OvertimeHours: decimal.NewFromInt(1),
		BonusAmount:   decimal.RequireFromString("10"),
		PaymentMethod: "Cash",
		Status:        models.PaycheckFinal,
	})
	require.NoError(t, err)
	assert.Equal(t, "75.00", pc.GrossPay.StringFixed(2))

	require.Len(t, a.keys, 1)
	assert.Equal(t, "statements/2024/03/amuster.pdf", a.keys[0])
	assert.True(t, bytes.HasPrefix(a.data[0], []byte("%PDF-1.4")))

	m, err := svc.Month(ctx, u.ID, march)
	require.NoError(t, err)
	require.NotNil(t, m.Paycheck)
	assert.Equal(t, models.PaycheckFinal, m.Statement.Status)
	assert.Equal(t, "75.00 CHF", m.Statement.GrossPay)
	assert.Equal(t, "75.00 CHF", m.Statement.YTDGross)

	f := m.Form()
	assert.Equal(t, "1.00", f.OvertimeHours)
	assert.Equal(t, "10.00", f.BonusAmount)
	assert.Equal(t, "Cash", f.PaymentMethod)
	assert.Equal(t, models.PaycheckFinal, f.Status)
}

func TestSavePaycheckDraftIsNotArchived(t *testing.T) {
	store := setupStore(t)
	u := workedUser(t, store)
	a := &fakeArchive{}
	svc := newPayroll(store, a)

	pc, err := svc.SavePaycheck(context.Background(), u.ID, march, payroll.Adjustments{Status: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, models.PaycheckDraft, pc.Status)
	assert.Empty(t, a.keys)
}

func TestSavePaycheckSurvivesArchiveFailure(t *testing.T) {
	store := setupStore(t)
	u := workedUser(t, store)
	svc := newPayroll(store, &fakeArchive{err: errors.New("bucket gone")})

	_, err := svc.SavePaycheck(context.Background(), u.ID, march, payroll.Adjustments{Status: models.PaycheckFinal})
	require.NoError(t, err)

	saved, err := store.Paychecks.Find(context.Background(), u.ID, march)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestSavePaycheckFinalIgnoresOpenSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	u := workedUser(t, store)
	_, _, err := store.Sessions.StartIfNoneOpen(ctx, u.ID, time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC), models.SourceManual)
	require.NoError(t, err)
	svc := newPayroll(store, nil)

	// the open session runs 37h until the service's now
	draft, err := svc.SavePaycheck(ctx, u.ID, march, payroll.Adjustments{})
	require.NoError(t, err)
	assert.Equal(t, "39.00", draft.TotalHours.StringFixed(2))

	final, err := svc.SavePaycheck(ctx, u.ID, march, payroll.Adjustments{Status: models.PaycheckFinal})
	require.NoError(t, err)
	assert.Equal(t, models.PaycheckFinal, final.Status)
	assert.Equal(t, "2.00", final.TotalHours.StringFixed(2))
	assert.Equal(t, "40.00", final.BasePay.StringFixed(2))
	assert.Equal(t, draft.ID, final.ID)

	saved, err := store.Paychecks.Find(ctx, u.ID, march)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, final.ID, saved.ID)
	assert.Equal(t, "2.00", saved.TotalHours.StringFixed(2))
}

func TestPDF(t *testing.T) {
	store := setupStore(t)
	u := workedUser(t, store)
	svc := newPayroll(store, nil)

	pdf, name, err := svc.PDF(context.Background(), u.ID, march)
	require.NoError(t, err)
	assert.Equal(t, "lohnabrechnung_amuster_2024-03.pdf", name)
	assert.Contains(t, string(pdf), "Anna Muster")
}

func TestPeriodOverviewAndExport(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	u := workedUser(t, store)
	createUser(t, store, &models.User{LDAPUsername: "bbeispiel", Name: "Berta Beispiel"})
	svc := newPayroll(store, nil)

	_, err := svc.SavePaycheck(ctx, u.ID, march, payroll.Adjustments{})
	require.NoError(t, err)

	rows, err := svc.PeriodOverview(ctx, march)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Anna Muster", rows[0].User.Name)
	assert.Equal(t, models.PaycheckDraft, rows[0].Status)
	assert.Equal(t, "2.00", rows[0].Hours.StringFixed(2))
	assert.Equal(t, "0.00 CHF", rows[0].Statement.YTDGross)
	assert.Equal(t, payroll.StatusPreview, rows[1].Status)

	data, err := svc.Export(ctx, march)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	xrows, err := f.GetRows("Payroll 2024-03")
	require.NoError(t, err)
	require.Len(t, xrows, 3)
	assert.Equal(t, "amuster", xrows[1][0])
}
