// Package idle implements the inactivity timer that warns a user before
// signing them out.
//
// A Timer moves through three phases. It is Active while the user is
// interacting. Once WarningAfter has passed without activity it enters
// Warning, where passive activity is ignored and only StayLoggedIn returns it
// to Active. Once LogoutAfter has passed it is Expired and the logout callback
// runs.
//
// Every tick and every call is handled by a single goroutine, one at a time
// and in arrival order. Each handler first brings the phase up to date with
// the elapsed time, so whichever event is processed last decides the outcome.
package idle

import (
	"fmt"
	"sync"
	"time"
)

type Phase int

const (
	Active Phase = iota
	Warning
	Expired
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Warning:
		return "warning"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Config holds the thresholds, measured from the last accepted activity.
type Config struct {
	WarningAfter time.Duration
	LogoutAfter  time.Duration
	TickInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		WarningAfter: 13 * time.Minute,
		LogoutAfter:  15 * time.Minute,
		TickInterval: time.Second,
	}
}

func (c Config) Validate() error {
	if c.WarningAfter <= 0 || c.LogoutAfter <= 0 || c.TickInterval <= 0 {
		return fmt.Errorf("idle durations must be positive")
	}
	if c.LogoutAfter < c.WarningAfter {
		return fmt.Errorf("logout threshold %s is before warning threshold %s", c.LogoutAfter, c.WarningAfter)
	}
	return nil
}

// Status is what the UI shows: whether the warning is visible and how long
// is left before logout. Remaining is zero outside Warning.
type Status struct {
	Phase          Phase         `json:"phase"`
	WarningVisible bool          `json:"warningVisible"`
	Remaining      time.Duration `json:"-"`
}

func (s Status) MillisecondsRemaining() int64 {
	return s.Remaining.Milliseconds()
}

type eventKind int

const (
	evActivity eventKind = iota
	evStay
	evLogoutNow
	evStatus
)

type event struct {
	kind  eventKind
	reply chan Status
}

// run is one armed lifetime of the loop goroutine
type run struct {
	events chan event
	stop   chan struct{}
	exited chan struct{}
}

// machine is owned by the loop goroutine
type machine struct {
	cfg          Config
	phase        Phase
	lastActivity time.Time
}

func (m *machine) advance(now time.Time) {
	if m.phase == Expired {
		return
	}
	idle := now.Sub(m.lastActivity)
	switch {
	case idle >= m.cfg.LogoutAfter:
		m.phase = Expired
	case idle >= m.cfg.WarningAfter:
		m.phase = Warning
	}
}

func (m *machine) status(now time.Time) Status {
	s := Status{Phase: m.phase}
	if m.phase == Warning {
		s.WarningVisible = true
		s.Remaining = m.cfg.LogoutAfter - now.Sub(m.lastActivity)
		if s.Remaining < 0 {
			s.Remaining = 0
		}
	}
	return s
}

type Option func(*Timer)

func WithClock(c Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// WithObserver is called from the loop goroutine on every phase change. It
// must not call Disarm.
func WithObserver(fn func(Status)) Option {
	return func(t *Timer) {
		t.observer = fn
	}
}

// Timer is the idle state machine for one authenticated session.
type Timer struct {
	cfg      Config
	clock    Clock
	onLogout func()
	observer func(Status)

	mu   sync.Mutex
	run  *run
	last Status
}

// New creates a disarmed timer. onLogout runs at most once per Arm, on the
// loop goroutine, when the timer expires.
func New(cfg Config, onLogout func(), opts ...Option) (*Timer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if onLogout == nil {
		return nil, fmt.Errorf("[idle.New] logout callback is required")
	}
	t := &Timer{
		cfg:      cfg,
		clock:    realClock{},
		onLogout: onLogout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Arm starts a fresh Active machine, replacing any running one.
func (t *Timer) Arm() {
	r := &run{
		events: make(chan event),
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	m := &machine{cfg: t.cfg, phase: Active, lastActivity: t.clock.Now()}
	ticker := t.clock.NewTicker(t.cfg.TickInterval)

	t.mu.Lock()
	old := t.run
	t.run = r
	t.last = Status{Phase: Active}
	t.mu.Unlock()

	stopRun(old)
	go t.loop(r, ticker, m)
}

// Disarm stops the loop and waits for it to exit. No logout can fire
// afterwards.
func (t *Timer) Disarm() {
	t.mu.Lock()
	r := t.run
	t.run = nil
	t.last = Status{Phase: Active}
	t.mu.Unlock()

	stopRun(r)
}

// Armed reports whether the loop is running
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.run != nil
}

// Activity records passive user activity. It is ignored outside Active.
func (t *Timer) Activity() Status {
	return t.send(evActivity)
}

// StayLoggedIn acknowledges the warning and returns to Active.
func (t *Timer) StayLoggedIn() Status {
	return t.send(evStay)
}

// LogoutNow expires the session immediately.
func (t *Timer) LogoutNow() Status {
	return t.send(evLogoutNow)
}

// Status returns the current status, evaluated against the clock.
func (t *Timer) Status() Status {
	return t.send(evStatus)
}

func (t *Timer) send(kind eventKind) Status {
	t.mu.Lock()
	r := t.run
	last := t.last
	t.mu.Unlock()
	if r == nil {
		return last
	}

	reply := make(chan Status, 1)
	select {
	case r.events <- event{kind: kind, reply: reply}:
	case <-r.exited:
		return t.lastStatus()
	}

	select {
	case s := <-reply:
		return s
	case <-r.exited:
		select {
		case s := <-reply:
			return s
		default:
			return t.lastStatus()
		}
	}
}

func (t *Timer) lastStatus() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *Timer) loop(r *run, ticker Ticker, m *machine) {
	defer close(r.exited)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C():
			if t.handle(r, m, nil) {
				return
			}
		case ev := <-r.events:
			if t.handle(r, m, &ev) {
				return
			}
		}
	}
}

// handle processes one tick or event and reports whether the run has ended.
func (t *Timer) handle(r *run, m *machine, ev *event) bool {
	now := t.clock.Now()
	before := m.phase
	m.advance(now)

	if ev != nil {
		switch ev.kind {
		case evActivity:
			if m.phase == Active {
				m.lastActivity = now
			}
		case evStay:
			if m.phase != Expired {
				m.phase = Active
				m.lastActivity = now
			}
		case evLogoutNow:
			m.phase = Expired
		}
	}

	status := m.status(now)
	if m.phase != before && t.observer != nil {
		t.observer(status)
	}

	t.mu.Lock()
	owned := t.run == r
	if owned {
		t.last = status
		if m.phase == Expired {
			t.run = nil
		}
	}
	t.mu.Unlock()

	if m.phase == Expired && owned {
		t.onLogout()
	}
	if ev != nil {
		ev.reply <- status
	}
	return m.phase == Expired
}

func stopRun(r *run) {
	if r == nil {
		return
	}
	close(r.stop)
	<-r.exited
}
