package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	IdleConfig
	StoreConfig
	AuthAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Idle
	Store
	AuthAPI
}

func New() Config {
	return mainConfig{}
}
