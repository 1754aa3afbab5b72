// Package presence opens and closes automatic clock sessions for employees
// whose devices appear on or disappear from the office network.
package presence

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"timetracking/metrics"
	"timetracking/models"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 120 * time.Second
)

type Users interface {
	ListTracked(ctx context.Context) ([]models.User, error)
}

type Sessions interface {
	StartIfNoneOpen(ctx context.Context, userID uuid.UUID, at time.Time, source string) (*models.Session, bool, error)
	FindOpenBySource(ctx context.Context, userID uuid.UUID, source string) (*models.Session, error)
	Close(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Tracker struct {
	Scanner  Scanner
	Users    Users
	Sessions Sessions
	LastSeen LastSeenStore
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	Interval time.Duration
	// Timeout is how long a device must stay away before its session closes.
	Timeout time.Duration
	Now     func() time.Time

	unavailableLogged atomic.Bool
}

// Tick runs one scan and applies it.
func (t *Tracker) Tick(ctx context.Context) {
	now := t.now()
	visible, ok := t.Scanner.Scan(ctx)
	if !ok {
		t.Metrics.Scan("unavailable", 0)
		if t.unavailableLogged.CompareAndSwap(false, true) {
			t.logger().Warn("arp-scan unavailable; auto-tracking paused until it succeeds")
		}
		return
	}
	t.unavailableLogged.Store(false)

	users, err := t.Users.ListTracked(ctx)
	if err != nil {
		t.Metrics.Scan("error", 0)
		t.logger().Error("Failed to load tracked users", zap.Error(err))
		return
	}

	present := 0
	for _, u := range users {
		if u.MACAddress == nil {
			continue
		}
		if _, seen := visible[strings.ToLower(strings.TrimSpace(*u.MACAddress))]; seen {
			present++
			t.seen(ctx, u, now)
			continue
		}
		t.missing(ctx, u, now)
	}
	t.Metrics.Scan("ok", present)
}

func (t *Tracker) seen(ctx context.Context, u models.User, now time.Time) {
	if err := t.LastSeen.Set(ctx, u.ID, now); err != nil {
		t.logger().Error("Failed to record presence", zap.String("user", u.LDAPUsername), zap.Error(err))
	}
	_, created, err := t.Sessions.StartIfNoneOpen(ctx, u.ID, now, models.SourceAuto)
	if err != nil {
		t.logger().Error("Failed to start auto session", zap.String("user", u.LDAPUsername), zap.Error(err))
		return
	}
	if created {
		t.Metrics.Clock(models.SourceAuto, "started")
		t.logger().Info("Auto session started", zap.String("user", u.LDAPUsername))
	}
}

// missing closes the newest open automatic session once the device has
// been gone for the timeout. Users never seen since start are left alone.
func (t *Tracker) missing(ctx context.Context, u models.User, now time.Time) {
	last, ok, err := t.LastSeen.Get(ctx, u.ID)
	if err != nil {
		t.logger().Error("Failed to read presence", zap.String("user", u.LDAPUsername), zap.Error(err))
		return
	}
	if !ok || now.Sub(last) < t.timeout() {
		return
	}

	open, err := t.Sessions.FindOpenBySource(ctx, u.ID, models.SourceAuto)
	if err != nil {
		t.logger().Error("Failed to load auto session", zap.String("user", u.LDAPUsername), zap.Error(err))
		return
	}
	if open == nil {
		return
	}
	if err := t.Sessions.Close(ctx, open.ID, now); err != nil {
		t.logger().Error("Failed to close auto session", zap.String("user", u.LDAPUsername), zap.Error(err))
		return
	}
	t.Metrics.Clock(models.SourceAuto, "stopped")
	t.logger().Info("Auto session stopped", zap.String("user", u.LDAPUsername))
}

// Run ticks immediately and then every Interval until ctx is cancelled. It
// returns after the running tick, if any, has finished.
func (t *Tracker) Run(ctx context.Context) {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	t.Tick(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(interval), cron.FuncJob(func() { t.Tick(ctx) }))
	c.Start()
	t.logger().Info("Auto tracking started", zap.Duration("interval", interval), zap.Duration("timeout", t.timeout()))

	<-ctx.Done()
	<-c.Stop().Done()
	t.logger().Info("Auto tracking stopped")
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t *Tracker) timeout() time.Duration {
	if t.Timeout <= 0 {
		return DefaultTimeout
	}
	return t.Timeout
}

func (t *Tracker) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}
