package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"timetracking/metrics"
	"timetracking/models"
	"timetracking/repositories"
)

const (
	StatusPresent = "anwesend"
	StatusAbsent  = "abwesend"

	ActionCheckedIn  = "checked_in"
	ActionCheckedOut = "checked_out"
)

var (
	ErrInvalidUID   = errors.New("invalid_uid")
	ErrUnknownCard  = errors.New("unknown_card")
	ErrUserDisabled = errors.New("user_disabled")
	ErrInvalidDate  = errors.New("invalid date")
)

type ClockService struct {
	Store   *repositories.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (s *ClockService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Start opens a manual session unless one of any source is already open.
// It always reports the current time, like a button press would.
func (s *ClockService) Start(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	now := s.now()
	_, created, err := s.Store.Sessions.StartIfNoneOpen(ctx, userID, now, models.SourceManual)
	if err != nil {
		return now, err
	}
	if created {
		s.Metrics.Clock(models.SourceManual, "started")
	}
	return now, nil
}

// Stop closes every open session of the user.
func (s *ClockService) Stop(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	now := s.now()
	n, err := s.Store.Sessions.StopAllOpen(ctx, userID, now)
	if err != nil {
		return now, err
	}
	if n > 0 {
		s.Metrics.Clock(models.SourceManual, "stopped")
	}
	return now, nil
}

func (s *ClockService) Status(ctx context.Context, userID uuid.UUID) (string, error) {
	open, err := s.Store.Sessions.FindOpen(ctx, userID)
	if err != nil {
		return "", err
	}
	if open != nil {
		return StatusPresent, nil
	}
	return StatusAbsent, nil
}

// Sessions lists the user's sessions. Without a date every session is
// returned. With a date and an offset the local day is used, otherwise the
// UTC day.
func (s *ClockService) Sessions(ctx context.Context, userID uuid.UUID, date string, tzOffset *int) ([]models.Session, error) {
	if date == "" {
		return s.Store.Sessions.ListAll(ctx, userID)
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	offset := 0
	if tzOffset != nil {
		offset = *tzOffset
	}
	return s.Store.Sessions.ListForDay(ctx, userID, day, offset)
}

func (s *ClockService) SetNote(ctx context.Context, userID, sessionID uuid.UUID, note string) error {
	return s.Store.Sessions.SetNote(ctx, sessionID, userID, note)
}

// NormalizeNFCUID strips separators and upper-cases a card id, so
// "04:a2-1b" and "04A21B" are the same card.
func NormalizeNFCUID(raw string) string {
	r := strings.NewReplacer(":", "", "-", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(raw)))
}

type ScanResult struct {
	Action    string
	Status    string
	Time      time.Time
	SessionID uuid.UUID
	User      models.User
	UID       string
}

// TerminalScan toggles the card owner's presence: check in with an NFC
// session when nothing is open, otherwise close the newest open session.
func (s *ClockService) TerminalScan(ctx context.Context, rawUID string) (*ScanResult, error) {
	uid := NormalizeNFCUID(rawUID)
	if uid == "" {
		return nil, ErrInvalidUID
	}
	res := &ScanResult{UID: uid, Time: s.now()}

	u, err := s.Store.Users.FindByNFC(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return res, ErrUnknownCard
	}
	if err != nil {
		return nil, err
	}
	res.User = *u
	if !u.IsActive {
		return res, ErrUserDisabled
	}

	// One atomic step decides the direction: either a new session is opened
	// or the one already open is returned and gets closed.
	sess, created, err := s.Store.Sessions.StartIfNoneOpen(ctx, u.ID, res.Time, models.SourceNFC)
	if err != nil {
		return nil, err
	}
	if created {
		res.Action, res.Status, res.SessionID = ActionCheckedIn, StatusPresent, sess.ID
		s.Metrics.Clock(models.SourceNFC, ActionCheckedIn)
		return res, nil
	}

	if err := s.Store.Sessions.Close(ctx, sess.ID, res.Time); err != nil {
		return nil, err
	}
	res.Action, res.Status, res.SessionID = ActionCheckedOut, StatusAbsent, sess.ID
	s.Metrics.Clock(models.SourceNFC, ActionCheckedOut)
	return res, nil
}
