package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"timetracking/models"
	"timetracking/payroll"
	"timetracking/repositories"
)

// UserForm carries the raw administrator input. Numbers stay strings here
// and are coerced, never rejected.
type UserForm struct {
	Name                string `form:"name" validate:"required"`
	LDAPUsername        string `form:"ldap_username" validate:"required"`
	Department          string `form:"department"`
	RoleTitle           string `form:"role_title"`
	ManagerID           string `form:"manager_id"`
	MACAddress          string `form:"mac_address"`
	NFCUID              string `form:"nfc_uid"`
	PayType             string `form:"pay_type"`
	HourlyRate          string `form:"hourly_rate"`
	SalaryMonthly       string `form:"salary_monthly"`
	OvertimeMultiplier  string `form:"overtime_multiplier"`
	TaxRate             string `form:"tax_rate"`
	SocialRate          string `form:"social_rate"`
	PensionRate         string `form:"pension_rate"`
	OtherRate           string `form:"other_rate"`
	EmployerSocialRate  string `form:"employer_social_rate"`
	EmployerPensionRate string `form:"employer_pension_rate"`
	EmployerOtherRate   string `form:"employer_other_rate"`
	PaymentMethod       string `form:"payment_method"`
	IsActive            string `form:"is_active"`
}

type UserService struct {
	Store *repositories.Store
}

// Apply copies the form onto u. Empty text becomes NULL, unparseable money
// becomes NULL, rates default to zero and the overtime multiplier to 1.25.
func (f UserForm) Apply(u *models.User) {
	u.Name = strings.TrimSpace(f.Name)
	u.LDAPUsername = strings.TrimSpace(f.LDAPUsername)
	u.Department = optionalString(f.Department)
	u.RoleTitle = optionalString(f.RoleTitle)
	u.ManagerID = optionalUUID(f.ManagerID)
	u.MACAddress = optionalString(f.MACAddress)
	u.NFCUID = optionalString(NormalizeNFCUID(f.NFCUID))
	u.PayType = payroll.NormalizePayType(strings.TrimSpace(f.PayType))
	u.HourlyRate = optionalDecimal(f.HourlyRate)
	u.SalaryMonthly = optionalDecimal(f.SalaryMonthly)
	u.OvertimeMultiplier = decimalPtr(payroll.DecimalOr(f.OvertimeMultiplier, payroll.DefaultOvertimeMultiplier()))
	u.TaxRate = decimalPtr(payroll.DecimalOrZero(f.TaxRate))
	u.SocialRate = decimalPtr(payroll.DecimalOrZero(f.SocialRate))
	u.PensionRate = decimalPtr(payroll.DecimalOrZero(f.PensionRate))
	u.OtherRate = decimalPtr(payroll.DecimalOrZero(f.OtherRate))
	u.EmployerSocialRate = decimalPtr(payroll.DecimalOrZero(f.EmployerSocialRate))
	u.EmployerPensionRate = decimalPtr(payroll.DecimalOrZero(f.EmployerPensionRate))
	u.EmployerOtherRate = decimalPtr(payroll.DecimalOrZero(f.EmployerOtherRate))
	u.PaymentMethod = optionalString(f.PaymentMethod)
}

// Create adds an active user.
func (s *UserService) Create(ctx context.Context, f UserForm) (*models.User, error) {
	u := &models.User{IsActive: true}
	f.Apply(u)
	if err := s.Store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces every editable field. An absent is_active means inactive,
// the way an unchecked checkbox is submitted.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, f UserForm) (*models.User, error) {
	u, err := s.Store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Apply(u)
	u.IsActive = strings.TrimSpace(f.IsActive) != ""
	u.Manager = nil
	if err := s.Store.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Toggle(ctx context.Context, id uuid.UUID) error {
	return s.Store.Users.ToggleActive(ctx, id)
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func optionalUUID(v string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &id
}

func optionalDecimal(v string) *decimal.Decimal {
	d, ok := payroll.ParseDecimal(v)
	if !ok {
		return nil
	}
	return &d
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
