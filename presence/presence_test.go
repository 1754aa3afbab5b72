package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracking/database"
	"timetracking/metrics"
	"timetracking/models"
	"timetracking/repositories"
)

const arpOutput = `Interface: eth0, type: EN10MB, MAC: 00:15:5d:01:02:03, IPv4: 192.168.1.10
Starting arp-scan 1.9.7 with 256 hosts (https://github.com/royhills/arp-scan)
192.168.1.1	a4:91:b1:00:11:22	Technicolor
192.168.1.23	3C:22:FB:AA:BB:CC	Apple, Inc.

2 packets received by filter, 0 packets dropped by kernel
Ending arp-scan 1.9.7: 256 hosts scanned in 1.912 seconds (133.89 hosts/sec). 2 responded
`

func TestParseARPScan(t *testing.T) {
	macs := ParseARPScan(arpOutput)
	assert.Len(t, macs, 2)
	assert.Contains(t, macs, "a4:91:b1:00:11:22")
	assert.Contains(t, macs, "3c:22:fb:aa:bb:cc")
}

func TestARPScannerUnavailable(t *testing.T) {
	s := &ARPScanner{Command: "definitely-not-arp-scan-" + uuid.NewString()}
	_, ok := s.Scan(context.Background())
	assert.False(t, ok)
}

type fakeScanner struct {
	mu    sync.Mutex
	macs  []string
	ok    bool
	calls int
}

func (f *fakeScanner) set(ok bool, macs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok, f.macs = ok, macs
}

func (f *fakeScanner) Scan(context.Context) (map[string]struct{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if !f.ok {
		return nil, false
	}
	out := make(map[string]struct{})
	for _, m := range f.macs {
		out[m] = struct{}{}
	}
	return out, true
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time            { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setup(t *testing.T) (*repositories.Store, *models.User, *fakeScanner, *clock, *Tracker) {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	store := repositories.NewStore(db)

	mac := "3C:22:FB:AA:BB:CC"
	u := &models.User{Name: "Anna", LDAPUsername: "anna", PayType: models.PayTypeHourly, IsActive: true, MACAddress: &mac}
	require.NoError(t, store.Users.Create(context.Background(), u))

	scanner := &fakeScanner{}
	clk := &clock{t: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)}
	tr := &Tracker{
		Scanner:  scanner,
		Users:    store.Users,
		Sessions: store.Sessions,
		LastSeen: NewMemoryLastSeen(),
		Metrics:  metrics.New(),
		Timeout:  120 * time.Second,
		Now:      clk.now,
	}
	return store, u, scanner, clk, tr
}

func TestTrackerOpensAndClosesAutoSession(t *testing.T) {
	store, u, scanner, clk, tr := setup(t)
	ctx := context.Background()

	scanner.set(true, "3c:22:fb:aa:bb:cc")
	tr.Tick(ctx)
	first, err := store.Sessions.FindOpenBySource(ctx, u.ID, models.SourceAuto)
	require.NoError(t, err)
	require.NotNil(t, first)

	clk.advance(30 * time.Second)
	tr.Tick(ctx)
	again, err := store.Sessions.FindOpenBySource(ctx, u.ID, models.SourceAuto)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// Gone, but not for long enough.
	scanner.set(true)
	clk.advance(60 * time.Second)
	tr.Tick(ctx)
	open, err := store.Sessions.FindOpen(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, open)

	clk.advance(60 * time.Second)
	tr.Tick(ctx)
	open, err = store.Sessions.FindOpen(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, open)

	all, err := store.Sessions.ListAll(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].EndTime)
	assert.True(t, all[0].EndTime.Equal(clk.t))
}

func TestTrackerLeavesManualSessionsOpen(t *testing.T) {
	store, u, scanner, clk, tr := setup(t)
	ctx := context.Background()

	_, _, err := store.Sessions.StartIfNoneOpen(ctx, u.ID, clk.t, models.SourceManual)
	require.NoError(t, err)

	scanner.set(true, "3c:22:fb:aa:bb:cc")
	tr.Tick(ctx)
	scanner.set(true)
	clk.advance(10 * time.Minute)
	tr.Tick(ctx)

	open, err := store.Sessions.FindOpen(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, models.SourceManual, open.Source)
}

func TestTrackerIgnoresUsersNeverSeen(t *testing.T) {
	store, u, scanner, clk, tr := setup(t)
	ctx := context.Background()

	_, _, err := store.Sessions.StartIfNoneOpen(ctx, u.ID, clk.t, models.SourceAuto)
	require.NoError(t, err)

	scanner.set(true)
	clk.advance(time.Hour)
	tr.Tick(ctx)

	open, err := store.Sessions.FindOpen(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, open)
}

func TestTrackerScannerUnavailable(t *testing.T) {
	store, u, scanner, _, tr := setup(t)
	ctx := context.Background()

	scanner.set(false)
	tr.Tick(ctx)
	tr.Tick(ctx)

	open, err := store.Sessions.FindOpen(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.True(t, tr.unavailableLogged.Load())

	scanner.set(true)
	tr.Tick(ctx)
	assert.False(t, tr.unavailableLogged.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	_, _, scanner, _, tr := setup(t)
	scanner.set(true)
	tr.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	assert.Equal(t, 1, scanner.calls)
}

func TestMemoryLastSeen(t *testing.T) {
	s := NewMemoryLastSeen()
	ctx := context.Background()
	id := uuid.New()

	_, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, id, at))
	got, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, at, got)
}
