package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/campusconnect/internal/api"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/email"
	"github.com/loganlanou/campusconnect/internal/forms"
	"github.com/loganlanou/campusconnect/internal/handlers"
	"github.com/loganlanou/campusconnect/internal/jobs"
	"github.com/loganlanou/campusconnect/internal/recaptcha"
	"github.com/loganlanou/campusconnect/internal/session"
)

type Service struct {
	config *Config
	policy *auth.Policy
	deps   *handlers.Deps

	pages    *handlers.PageHandler
	listings *handlers.ListingHandler
	auth     *handlers.AuthHandler
	profile  *handlers.ProfileHandler
	mySpace  *handlers.MySpaceHandler
	admin    *handlers.AdminHandler
	share    *handlers.ShareHandler

	mailer *jobs.Mailer
}

// New wires the gateway around store, which caches resolved sessions.
// The service owns store from here on and closes it in Close.
func New(config *Config, store auth.Store) (*Service, error) {
	policy, err := auth.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("load authorization policy: %w", err)
	}

	client := api.NewClient(config.API.BaseURL, config.API.Timeout)
	deps := &handlers.Deps{
		API:           client,
		Resolver:      auth.NewResolver(client, store, auth.WithWaitBudget(config.Session.Wait)),
		Sessions:      session.NewManager(config.Session.Secret, config.IsProduction()),
		Validator:     forms.New(),
		SiteURL:       config.BaseURL,
		SecureCookies: config.IsProduction(),
	}
	if config.Recaptcha.SecretKey != "" {
		deps.Captcha = recaptcha.NewVerifier(config.Recaptcha.SecretKey, recaptcha.WithMinScore(config.Recaptcha.MinScore))
		deps.CaptchaSiteKey = config.Recaptcha.SiteKey
	}

	var mailer *jobs.Mailer
	if config.SMTP.Host != "" {
		mailer = jobs.NewMailer(email.NewService(email.Config{
			Host:     config.SMTP.Host,
			Port:     config.SMTP.Port,
			Username: config.SMTP.Username,
			Password: config.SMTP.Password,
			From:     config.SMTP.From,
		}))
		mailer.Start(context.Background())
		deps.Mail = mailer
		deps.ContactInbox = config.ContactInbox
	}

	return &Service{
		config:   config,
		policy:   policy,
		deps:     deps,
		pages:    handlers.NewPageHandler(deps, config.GuestBrowseLimit),
		listings: handlers.NewListingHandler(deps),
		auth:     handlers.NewAuthHandler(deps),
		profile:  handlers.NewProfileHandler(deps),
		mySpace:  handlers.NewMySpaceHandler(deps),
		admin:    handlers.NewAdminHandler(deps),
		share:    handlers.NewShareHandler(deps),
		mailer:   mailer,
	}, nil
}

// NewSessionStore returns the Redis-backed session cache when REDIS_ADDR is
// set, and the in-process one otherwise
func NewSessionStore(ctx context.Context, config *Config) (auth.Store, error) {
	if config.Redis.Addr == "" {
		slog.Info("using in-memory session cache", "ttl", config.Session.CacheTTL)
		return auth.NewMemoryStore(config.Session.CacheTTL), nil
	}

	client, err := auth.NewRedisClient(ctx, config.Redis.Addr, config.Redis.Password, config.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", config.Redis.Addr, err)
	}
	slog.Info("using redis session cache", "addr", config.Redis.Addr, "db", config.Redis.DB, "ttl", config.Session.CacheTTL)
	return auth.NewRedisStore(client, config.Session.CacheTTL), nil
}

const mailDrainTimeout = 10 * time.Second

// Close drains the mail queue, cancels pending session fetches and releases the session cache
func (s *Service) Close() error {
	if s.mailer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mailDrainTimeout)
		defer cancel()
		if err := s.mailer.Stop(ctx); err != nil {
			slog.Warn("mail queue not drained", "error", err)
		}
	}
	if err := s.deps.Resolver.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close session resolver: %w", err)
	}
	return nil
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"environment": s.config.Environment,
		"api":         s.deps.API.BaseURL(),
	})
}
