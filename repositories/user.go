package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetracking/models"
	"timetracking/payroll"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Manager").First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("ldap_username = ?", login).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByNFC(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("nfc_uid = ?", uid).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetOrCreate returns the user for a directory login, creating an active
// hourly user named after the login on first sight.
func (r *UserRepository) GetOrCreate(ctx context.Context, login string) (*models.User, error) {
	u, err := r.FindByLogin(ctx, login)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u = &models.User{Name: login, LDAPUsername: login, PayType: models.PayTypeHourly, IsActive: true}
	err = r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "ldap_username"}}, DoNothing: true}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	// A concurrent login may have won the insert.
	return r.FindByLogin(ctx, login)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

// Update writes every column, including nil and false values.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Select("*").Omit("id", "created_at", clause.Associations).Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) ToggleActive(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive is used for manager pick lists.
func (r *UserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&users).Error
	return users, err
}

// ListTracked returns active users with a device address for presence tracking.
func (r *UserRepository) ListTracked(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND mac_address IS NOT NULL AND mac_address <> ''", true).
		Find(&users).Error
	return users, err
}

// UserMonth is a user with the seconds worked in a period.
type UserMonth struct {
	models.User
	ManagerName  string `json:"manager_name"`
	MonthSeconds int64  `json:"month_seconds"`
}

// ListWithMonthSeconds lists every user, active or not, ordered by name, with
// the sessions started in [start, end) summed. Open sessions count until now.
func (r *UserRepository) ListWithMonthSeconds(ctx context.Context, start, end, now time.Time) ([]UserMonth, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("Manager").Order("name").Find(&users).Error; err != nil {
		return nil, err
	}

	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", start.UTC(), end.UTC()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID][]models.Session)
	for _, s := range sessions {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	out := make([]UserMonth, len(users))
	for i, u := range users {
		out[i] = UserMonth{
			User:         u,
			MonthSeconds: payroll.TotalSeconds(payroll.SpansOf(byUser[u.ID]), now),
		}
		if u.Manager != nil {
			out[i].ManagerName = u.Manager.Name
		}
	}
	return out, nil
}
