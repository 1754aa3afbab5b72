package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetracking/models"
)

type SessionRepository struct {
	db *gorm.DB
}

// StartIfNoneOpen opens a session unless the user already has one open of
// any source. Check and insert share a transaction; on servers that support
// it the user row is locked first so two concurrent toggles serialise.
func (r *SessionRepository) StartIfNoneOpen(ctx context.Context, userID uuid.UUID, at time.Time, source string) (*models.Session, bool, error) {
	var (
		sess    models.Session
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() != "sqlite" {
			var u models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&u, "id = ?", userID).Error; err != nil {
				return notFound(err)
			}
		}

		err := tx.Where("user_id = ? AND end_time IS NULL", userID).Order("start_time DESC").First(&sess).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sess = models.Session{UserID: userID, StartTime: at.UTC(), Source: source}
		if err := tx.Omit(clause.Associations).Create(&sess).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &sess, created, nil
}

// StopAllOpen closes every open session of the user and reports how many.
func (r *SessionRepository) StopAllOpen(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND end_time IS NULL", userID).
		Update("end_time", at.UTC())
	return res.RowsAffected, res.Error
}

// FindOpen returns the newest open session, or nil.
func (r *SessionRepository) FindOpen(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	return r.findOpen(r.db.WithContext(ctx).Where("user_id = ? AND end_time IS NULL", userID))
}

func (r *SessionRepository) FindOpenBySource(ctx context.Context, userID uuid.UUID, source string) (*models.Session, error) {
	return r.findOpen(r.db.WithContext(ctx).Where("user_id = ? AND end_time IS NULL AND source = ?", userID, source))
}

func (r *SessionRepository) findOpen(q *gorm.DB) (*models.Session, error) {
	var s models.Session
	err := q.Order("start_time DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("end_time", at.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListForUser returns sessions started in [start, end), newest first.
func (r *SessionRepository) ListForUser(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Session, error) {
	var out []models.Session
	err := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, start.UTC(), end.UTC()).
		Order("start_time DESC").Find(&out).Error
	return out, err
}

// ListAll returns every session of the user, newest first.
func (r *SessionRepository) ListAll(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	err := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ?", userID).Order("start_time DESC").Find(&out).Error
	return out, err
}

// ListForDay returns the sessions started on a local calendar day. The
// offset is minutes to add to local time to get UTC, as browsers report it.
func (r *SessionRepository) ListForDay(ctx context.Context, userID uuid.UUID, day time.Time, tzOffsetMinutes int) ([]models.Session, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).
		Add(time.Duration(tzOffsetMinutes) * time.Minute)
	return r.ListForUser(ctx, userID, start, start.AddDate(0, 0, 1))
}

// SetNote only touches sessions owned by the user.
func (r *SessionRepository) SetNote(ctx context.Context, id, userID uuid.UUID, note string) error {
	res := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("note", note)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AdminUpdate overwrites start, end and note. A nil end reopens the session.
func (r *SessionRepository) AdminUpdate(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time, note *string) error {
	if end != nil {
		utc := end.UTC()
		end = &utc
	}
	res := r.db.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"start_time": start.UTC(),
			"end_time":   end,
			"note":       note,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
