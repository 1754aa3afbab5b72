package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PayTypeHourly = "hourly"
	PayTypeSalary = "salary"

	SourceManual = "manual"
	SourceNFC    = "nfc"
	SourceAuto   = "auto"

	PaycheckDraft = "draft"
	PaycheckFinal = "final"

	DefaultPaymentMethod = "Bank Transfer"
)

// User is an employee known to the directory together with the pay
// configuration an administrator maintains for them.
type User struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	LDAPUsername string     `gorm:"column:ldap_username;uniqueIndex;size:191;not null" json:"ldap_username"`
	Department   *string    `json:"department"`
	RoleTitle    *string    `json:"role_title"`
	ManagerID    *uuid.UUID `gorm:"type:char(36)" json:"manager_id"`
	Manager      *User      `gorm:"foreignKey:ManagerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	MACAddress   *string    `gorm:"column:mac_address;size:64" json:"mac_address"`
	NFCUID       *string    `gorm:"column:nfc_uid;uniqueIndex;size:64" json:"nfc_uid"`

	PayType             string           `gorm:"size:16;not null;default:'hourly'" json:"pay_type"` // hourly, salary
	HourlyRate          *decimal.Decimal `gorm:"type:decimal(12,2)" json:"hourly_rate"`
	SalaryMonthly       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"salary_monthly"`
	OvertimeMultiplier  *decimal.Decimal `gorm:"type:decimal(6,4)" json:"overtime_multiplier"`
	TaxRate             *decimal.Decimal `gorm:"type:decimal(6,4)" json:"tax_rate"`
	SocialRate          *decimal.Decimal `gorm:"type:decimal(6,4)" json:"social_rate"`
	PensionRate         *decimal.Decimal `gorm:"type:decimal(6,4)" json:"pension_rate"`
	OtherRate           *decimal.Decimal `gorm:"type:decimal(6,4)" json:"other_rate"`
	EmployerSocialRate  *decimal.Decimal `gorm:"type:decimal(6,4)" json:"employer_social_rate"`
	EmployerPensionRate *decimal.Decimal `gorm:"type:decimal(6,4)" json:"employer_pension_rate"`
	EmployerOtherRate   *decimal.Decimal `gorm:"type:decimal(6,4)" json:"employer_other_rate"`
	PaymentMethod       *string          `json:"payment_method"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Session is one clock-in/clock-out interval. EndTime is nil while the
// session is open.
type Session struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;index:idx_sessions_user_start" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	StartTime time.Time  `gorm:"not null;index:idx_sessions_user_start" json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Note      *string    `json:"note"`
	Source    string     `gorm:"size:16;not null;default:'manual'" json:"source"` // manual, nfc, auto
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Paycheck is the frozen payroll snapshot for one user and calendar month.
// (user_id, period_year, period_month) is unique; saving again overwrites.
type Paycheck struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_paychecks_period" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	PeriodYear  int       `gorm:"not null;uniqueIndex:idx_paychecks_period" json:"period_year"`
	PeriodMonth int       `gorm:"not null;uniqueIndex:idx_paychecks_period" json:"period_month"`
	PayDate     time.Time `gorm:"not null" json:"pay_date"`

	PayType            string          `gorm:"size:16;not null" json:"pay_type"`
	HourlyRate         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"hourly_rate"`
	SalaryMonthly      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"salary_monthly"`
	TotalHours         decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"total_hours"`
	OvertimeHours      decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"overtime_hours"`
	OvertimeMultiplier decimal.Decimal `gorm:"type:decimal(6,4);not null;default:1.25" json:"overtime_multiplier"`

	BasePay         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_pay"`
	OvertimePay     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"overtime_pay"`
	BonusAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"bonus_amount"`
	AllowanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"allowance_amount"`
	GrossPay        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"gross_pay"`

	TaxRate              decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`
	SocialRate           decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"social_rate"`
	PensionRate          decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"pension_rate"`
	OtherRate            decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"other_rate"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	SocialAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"social_amount"`
	PensionAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pension_amount"`
	OtherDeductionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"other_deduction_amount"`
	TotalDeductions      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_deductions"`
	NetPay               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"net_pay"`

	EmployerSocialRate    decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"employer_social_rate"`
	EmployerPensionRate   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"employer_pension_rate"`
	EmployerOtherRate     decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"employer_other_rate"`
	EmployerSocialAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"employer_social_amount"`
	EmployerPensionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"employer_pension_amount"`
	EmployerOtherAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"employer_other_amount"`

	Status        string    `gorm:"size:16;not null;default:'draft'" json:"status"` // draft, final
	PaymentMethod string    `gorm:"not null" json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Paycheck) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// All returns every model that has to exist in the schema.
func All() []interface{} {
	return []interface{}{&User{}, &Session{}, &Paycheck{}}
}
