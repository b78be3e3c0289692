package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-retail-auth/auth"
	"github.com/jrsteele09/go-retail-auth/authapi"
	"github.com/jrsteele09/go-retail-auth/internal/config"
	"github.com/jrsteele09/go-retail-auth/kvstore"
	"github.com/jrsteele09/go-retail-auth/server"
	tenantrepofakes "github.com/jrsteele09/go-retail-auth/tenants/repofakes"
	"github.com/jrsteele09/go-retail-auth/token"
	fakeuserrepo "github.com/jrsteele09/go-retail-auth/users/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const authAPIMount = "/authapi"

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	kv, closeKV, err := openSessionStore(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeKV(); err != nil {
			log.Err(err).Msg("Failed to close session store")
		}
	}()

	api, authHandler, err := authBackend(c)
	if err != nil {
		return err
	}

	srv, err := server.New(c, api, kv)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	defer srv.Shutdown()
	if authHandler != nil {
		mounted := http.StripPrefix(authAPIMount, authHandler)
		srv.RegisterRouteHandler("GET "+authAPIMount+"/", mounted)
		srv.RegisterRouteHandler("POST "+authAPIMount+"/", mounted)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go func() {
		if err := listenAndServe(httpServer); err != nil {
			log.Error().Err(err).Msg("listener stopped")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func noClose() error { return nil }

// openSessionStore picks the durable key-value backend for client sessions
func openSessionStore(c config.Config) (kvstore.Store, func() error, error) {
	switch backend := c.GetStoreBackend(); backend {
	case config.StoreBackendMemory:
		log.Warn().Msg("Sessions are held in memory and will not survive a restart")
		return kvstore.NewMemory(), noClose, nil
	case config.StoreBackendFile:
		path := filepath.Join(c.GetDataFolder(), "sessions.json")
		f, err := kvstore.OpenFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("kvstore.OpenFile: %w", err)
		}
		log.Info().Str("path", path).Msg("Session store opened")
		return f, noClose, nil
	case config.StoreBackendRedis:
		client, err := kvstore.DialRedis(context.Background(), &redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err != nil {
			return nil, nil, err
		}
		r := kvstore.NewRedis(client, c.GetRedisPrefix(), kvstore.WithTTL(c.GetMaxSessionAge()))
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Session store connected to Redis")
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// authBackend returns the remote Auth service client when AUTH_API_URL is set,
// otherwise an in-process service over in-memory repositories whose HTTP
// surface is also mounted for other consoles.
func authBackend(c config.Config) (authapi.API, http.Handler, error) {
	if url := c.GetAuthAPIURL(); url != "" {
		log.Info().Str("url", url).Msg("Using remote Auth service")
		return authapi.NewClient(url, authapi.WithTimeout(c.GetAuthAPITimeout())), nil, nil
	}

	repos := auth.Repos{Users: fakeuserrepo.NewFakeUserRepo(), Tenants: tenantrepofakes.NewFakeTenantRepo()}
	if c.GetSeedDemoData() {
		accounts, err := auth.Bootstrap(repos, time.Now())
		if err != nil {
			return nil, nil, fmt.Errorf("auth.Bootstrap: %w", err)
		}
		for _, a := range accounts {
			log.Warn().Str("email", a.Email).Str("password", a.Password).Str("role", string(a.Role)).Msg("Demo account")
		}
	}

	tokens := token.New(token.NewHMACSigner(c.GetTokenSecret()), token.WithTokenExpiry(c.GetTokenExpiry()))
	svc, err := auth.NewService(repos, tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("auth.NewService: %w", err)
	}
	log.Info().Str("mount", authAPIMount).Msg("Using in-process Auth service")
	return svc, svc.Handler(), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
