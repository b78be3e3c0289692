package config

import "time"

type IdleConfig interface {
	GetIdleWarningAfter() time.Duration
	GetIdleLogoutAfter() time.Duration
	GetIdleTickInterval() time.Duration
}

type Idle struct{}

var _ IdleConfig = Idle{}

// GetIdleWarningAfter is how long a user may be inactive before the warning shows
func (Idle) GetIdleWarningAfter() time.Duration {
	return GetEnvDuration("IDLE_WARNING_AFTER", 13*time.Minute)
}

// GetIdleLogoutAfter is the total inactivity after which the session ends
func (Idle) GetIdleLogoutAfter() time.Duration {
	return GetEnvDuration("IDLE_LOGOUT_AFTER", 15*time.Minute)
}

func (Idle) GetIdleTickInterval() time.Duration {
	return GetEnvDuration("IDLE_TICK_INTERVAL", time.Second)
}
