package idle_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-retail-auth/idle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

// fakeClock only moves when Advance is called. Each advance offers one tick
// to every live ticker.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(time.Duration) idle.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTicker{c: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, ft)
	return ft
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*fakeTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, ft := range tickers {
		if ft.stopped.Load() {
			continue
		}
		select {
		case ft.c <- now:
		default:
		}
	}
}

var testConfig = idle.Config{
	WarningAfter: 2 * time.Minute,
	LogoutAfter:  3 * time.Minute,
	TickInterval: time.Second,
}

type fixture struct {
	clock   *fakeClock
	logouts atomic.Int32
	timer   *idle.Timer
}

func setup(t *testing.T, opts ...idle.Option) *fixture {
	t.Helper()
	f := &fixture{clock: newFakeClock()}
	timer, err := idle.New(testConfig, func() { f.logouts.Add(1) }, append([]idle.Option{idle.WithClock(f.clock)}, opts...)...)
	require.NoError(t, err)
	f.timer = timer
	t.Cleanup(timer.Disarm)
	return f
}

func (f *fixture) waitLogouts(t *testing.T, n int32) {
	t.Helper()
	require.Eventually(t, func() bool { return f.logouts.Load() == n }, time.Second, time.Millisecond)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, idle.DefaultConfig().Validate())
	require.NoError(t, testConfig.Validate())

	bad := testConfig
	bad.LogoutAfter = time.Minute
	require.Error(t, bad.Validate())

	bad = testConfig
	bad.TickInterval = 0
	require.Error(t, bad.Validate())

	_, err := idle.New(testConfig, nil)
	require.Error(t, err)
}

func TestWarningThenExpiry(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	s := f.timer.Status()
	require.Equal(t, idle.Active, s.Phase)
	require.False(t, s.WarningVisible)
	require.Zero(t, s.MillisecondsRemaining())

	f.clock.Advance(2 * time.Minute)
	s = f.timer.Status()
	require.Equal(t, idle.Warning, s.Phase)
	require.True(t, s.WarningVisible)
	require.Equal(t, time.Minute, s.Remaining)
	require.Equal(t, int64(60000), s.MillisecondsRemaining())
	require.Zero(t, f.logouts.Load())

	f.clock.Advance(time.Minute)
	s = f.timer.Status()
	require.Equal(t, idle.Expired, s.Phase)
	f.waitLogouts(t, 1)
	require.False(t, f.timer.Armed())

	// nothing after expiry can log out again
	f.clock.Advance(5 * time.Minute)
	f.timer.Activity()
	f.timer.LogoutNow()
	f.timer.Disarm()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int32(1), f.logouts.Load())
}

func TestActivityResetsWhileActive(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	f.clock.Advance(90 * time.Second)
	f.timer.Activity()
	f.clock.Advance(90 * time.Second)
	require.Equal(t, idle.Active, f.timer.Status().Phase)

	f.clock.Advance(30 * time.Second)
	require.Equal(t, idle.Warning, f.timer.Status().Phase)
}

func TestActivityIgnoredDuringWarning(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	f.clock.Advance(150 * time.Second)
	s := f.timer.Activity()
	require.Equal(t, idle.Warning, s.Phase)
	require.Equal(t, 30*time.Second, s.Remaining)

	f.clock.Advance(30 * time.Second)
	require.Equal(t, idle.Expired, f.timer.Status().Phase)
	f.waitLogouts(t, 1)
}

func TestStayLoggedInIsReusable(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	for i := 0; i < 3; i++ {
		f.clock.Advance(2*time.Minute + 10*time.Second)
		require.Equal(t, idle.Warning, f.timer.Status().Phase)

		s := f.timer.StayLoggedIn()
		require.Equal(t, idle.Active, s.Phase)
		require.False(t, s.WarningVisible)
		require.Zero(t, s.Remaining)
	}

	f.clock.Advance(time.Minute)
	require.Equal(t, idle.Active, f.timer.Status().Phase)
	require.Zero(t, f.logouts.Load())
}

func TestStayLoggedInWhileActiveCountsAsActivity(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	f.clock.Advance(100 * time.Second)
	require.Equal(t, idle.Active, f.timer.StayLoggedIn().Phase)
	f.clock.Advance(100 * time.Second)
	require.Equal(t, idle.Active, f.timer.Status().Phase)
}

func TestStayLoggedInAfterDeadlineLoses(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	// the clock is past the logout threshold when the acknowledgement is processed
	f.clock.Advance(3 * time.Minute)
	s := f.timer.StayLoggedIn()
	require.Equal(t, idle.Expired, s.Phase)
	f.waitLogouts(t, 1)
}

func TestLogoutNow(t *testing.T) {
	t.Run("from active", func(t *testing.T) {
		f := setup(t)
		f.timer.Arm()
		require.Equal(t, idle.Expired, f.timer.LogoutNow().Phase)
		f.waitLogouts(t, 1)
	})

	t.Run("from warning", func(t *testing.T) {
		f := setup(t)
		f.timer.Arm()
		f.clock.Advance(2 * time.Minute)
		require.Equal(t, idle.Expired, f.timer.LogoutNow().Phase)
		f.waitLogouts(t, 1)
	})
}

func TestDisarmPreventsLogout(t *testing.T) {
	f := setup(t)
	f.timer.Arm()
	f.clock.Advance(2 * time.Minute)
	f.timer.Disarm()

	f.clock.Advance(10 * time.Minute)
	s := f.timer.Status()
	require.Equal(t, idle.Active, s.Phase)
	require.False(t, s.WarningVisible)
	require.False(t, f.timer.Armed())

	time.Sleep(10 * time.Millisecond)
	require.Zero(t, f.logouts.Load())
}

func TestRearmAfterExpiry(t *testing.T) {
	f := setup(t)
	f.timer.Arm()
	f.timer.LogoutNow()
	f.waitLogouts(t, 1)

	f.timer.Arm()
	require.True(t, f.timer.Armed())
	require.Equal(t, idle.Active, f.timer.Status().Phase)

	f.clock.Advance(3 * time.Minute)
	f.timer.Status()
	f.waitLogouts(t, 2)
}

func TestTickDrivesExpiry(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	f.clock.Advance(3 * time.Minute)
	f.waitLogouts(t, 1)
	require.Eventually(t, func() bool { return !f.timer.Armed() }, time.Second, time.Millisecond)
}

func TestLogoutCallbackMayDisarm(t *testing.T) {
	clock := newFakeClock()
	var timer *idle.Timer
	var calls atomic.Int32
	timer, err := idle.New(testConfig, func() {
		calls.Add(1)
		timer.Disarm()
	}, idle.WithClock(clock))
	require.NoError(t, err)

	timer.Arm()
	require.Equal(t, idle.Expired, timer.LogoutNow().Phase)
	require.Equal(t, int32(1), calls.Load())
}

func TestObserverSeesPhaseChanges(t *testing.T) {
	var mu sync.Mutex
	var phases []idle.Phase
	f := setup(t, idle.WithObserver(func(s idle.Status) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
	}))
	f.timer.Arm()

	f.clock.Advance(2 * time.Minute)
	f.timer.Status()
	f.timer.StayLoggedIn()
	f.timer.LogoutNow()
	f.waitLogouts(t, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []idle.Phase{idle.Warning, idle.Active, idle.Expired}, phases)
}

func TestConcurrentEventsLogoutAtMostOnce(t *testing.T) {
	f := setup(t)
	f.timer.Arm()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					f.timer.Activity()
				case 1:
					f.timer.StayLoggedIn()
				case 2:
					f.clock.Advance(10 * time.Second)
				default:
					f.timer.Status()
				}
			}
		}(i)
	}
	wg.Wait()

	f.timer.LogoutNow()
	time.Sleep(10 * time.Millisecond)
	require.LessOrEqual(t, f.logouts.Load(), int32(1))
	f.timer.Disarm()
	require.LessOrEqual(t, f.logouts.Load(), int32(1))
}
