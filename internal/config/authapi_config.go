package config

import "time"

type AuthAPIConfig interface {
	GetAuthAPIURL() string
	GetAuthAPITimeout() time.Duration
	GetTokenSecret() string
	GetTokenExpiry() time.Duration
	GetSeedDemoData() bool
}

type AuthAPI struct{}

var _ AuthAPIConfig = AuthAPI{}

// GetAuthAPIURL is the remote Auth API. Empty runs the in-process service.
func (AuthAPI) GetAuthAPIURL() string {
	return GetEnv("AUTH_API_URL", "")
}

func (AuthAPI) GetAuthAPITimeout() time.Duration {
	return GetEnvDuration("AUTH_API_TIMEOUT", 10*time.Second)
}

func (AuthAPI) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "dev-secret-change-me")
}

func (AuthAPI) GetTokenExpiry() time.Duration {
	return GetEnvDuration("TOKEN_EXPIRY", 12*time.Hour)
}

func (AuthAPI) GetSeedDemoData() bool {
	return GetEnvBool("SEED_DEMO_DATA", true)
}
