// Package app wires configuration into the repositories, stores, mailer and
// services shared by the server and the one-shot Insights runner.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/lumewave/agency-site/internal/api"
	"github.com/lumewave/agency-site/internal/auth"
	"github.com/lumewave/agency-site/internal/config"
	"github.com/lumewave/agency-site/internal/email"
	"github.com/lumewave/agency-site/internal/pkg/distlock"
	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/repository/memory"
	"github.com/lumewave/agency-site/internal/repository/postgres"
	"github.com/lumewave/agency-site/internal/service/analytics"
	"github.com/lumewave/agency-site/internal/service/contact"
	"github.com/lumewave/agency-site/internal/service/content"
	"github.com/lumewave/agency-site/internal/service/insights"
	"github.com/lumewave/agency-site/internal/service/seo"
	"github.com/lumewave/agency-site/internal/service/subscriber"
	"github.com/lumewave/agency-site/internal/storage"
	"github.com/lumewave/agency-site/internal/tracking"
)

// App holds every long-lived dependency. Optional pieces are nil when not
// configured.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Redis    *redis.Client
	Files    storage.Store
	Mailer   *email.Mailer
	Services api.Services
	Auth     *auth.AuthManager
	Health   *api.HealthChecker
	Consumer *tracking.Consumer
}

// ConfigureLogging applies the logging section to pkg/logger.
func ConfigureLogging(cfg config.LoggingConfig) {
	logger.SetLevel(logger.ParseLevel(cfg.Level))
	logger.SetRedactPII(cfg.ShouldRedact())
}

// New connects to the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.openDatabase(ctx); err != nil {
		return nil, err
	}
	a.openRedis(ctx)

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	a.Files = files
	logger.Info("content store ready", "backend", files.Backend())

	sender, err := email.NewSender(ctx, cfg.Email)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialize email sender: %w", err)
	}
	signer := email.NewSigner(cfg.Email.UnsubscribeSecret, cfg.Server.BaseURL)
	a.Mailer = email.NewMailer(sender, signer, email.NewRenderer(), email.MailerConfig{
		From:                cfg.Email.From,
		AdminEmail:          cfg.Email.AdminEmail,
		SubscriptionSubject: cfg.Subscription.Subject,
	})
	logger.Info("email provider selected", "provider", sender.Name())

	repos := a.repositories()

	var (
		analyticsOpts []analytics.Option
		queue         tracking.SQSAPI
	)
	if cfg.Analytics.QueueURL != "" {
		client, err := tracking.NewSQSClient(ctx, cfg.Analytics.AWSRegion)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize sqs: %w", err)
		}
		queue = client
		analyticsOpts = append(analyticsOpts, analytics.WithRecorder(tracking.NewPublisher(client, cfg.Analytics.QueueURL)))
		logger.Info("analytics ingest via sqs", "queue", cfg.Analytics.QueueURL)
	}

	leases := distlock.NewFactory(a.Redis, a.DB, cfg.Insights.LeaseTTL())
	a.Services = api.Services{
		Subscribers: subscriber.NewService(repos.subscribers, files, a.Mailer, signer, cfg.Subscription.PDFKey),
		Contacts:    contact.NewService(repos.contacts, a.Mailer),
		SEO:         seo.NewService(repos.seo, seo.NewStoreSource(files, cfg.Content.SEOSeedKey)),
		Content:     content.NewService(files, cfg.Content.DocumentKey),
		Analytics:   analytics.NewService(repos.analytics, analyticsOpts...),
		Insights: insights.NewService(repos.insights, a.Mailer,
			insights.WithLeases(func(name string) insights.Lease { return leases(name) }),
			insights.WithLimits(cfg.Insights.DripLimit, cfg.Insights.BroadcastLimit),
		),
	}

	if queue != nil {
		a.Consumer = tracking.NewConsumer(queue, cfg.Analytics.QueueURL, a.Services.Analytics)
	}

	var sessions auth.SessionStore
	if a.Redis != nil {
		sessions = auth.NewRedisSessionStore(a.Redis, "")
	}
	a.Auth = auth.NewAuthManager(cfg.Auth, cfg.Server.BaseURL, sessions)
	if a.Auth.Open() {
		logger.Warn("admin routes are unprotected: set ADMIN_API_KEY or Google OAuth credentials")
	}

	a.Health = api.NewHealthChecker(a.DB, a.Redis, files, cfg.Insights.LeaseTTL())
	return a, nil
}

type repositories struct {
	subscribers subscriber.Repository
	contacts    contact.Repository
	seo         seo.Repository
	analytics   analytics.Repository
	insights    insights.Repository
}

func (a *App) repositories() repositories {
	if a.DB == nil {
		m := memory.New()
		return repositories{m.Subscribers, m.Contacts, m.SEO, m.Analytics, m.Insights}
	}
	pg := postgres.New(a.DB)
	return repositories{pg.Subscribers, pg.Contacts, pg.SEO, pg.Analytics, pg.Insights}
}

func (a *App) openDatabase(ctx context.Context) error {
	dbc := a.Config.Database
	if dbc.Driver == "memory" {
		logger.Warn("using in-memory repositories; data is lost on restart")
		return nil
	}
	if dbc.URL == "" {
		return fmt.Errorf("database url is required for driver %q", dbc.Driver)
	}

	db, err := sql.Open("postgres", dbc.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(dbc.MaxOpenConns)
	db.SetMaxIdleConns(dbc.MaxIdleConns)
	db.SetConnMaxLifetime(dbc.ConnMaxLifetime())
	db.SetConnMaxIdleTime(time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("ping database at %s: %w", dbHost(dbc.URL), err)
	}
	logger.Info("connected to database", "host", dbHost(dbc.URL))
	a.DB = db
	return nil
}

// openRedis connects when a URL is configured. Redis is optional: on failure
// leases fall back to Postgres and sessions to memory.
func (a *App) openRedis(ctx context.Context) {
	url := a.Config.Redis.URL
	if url == "" {
		return
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without it", "error", err)
		client.Close()
		return
	}
	logger.Info("connected to redis", "addr", opts.Addr)
	a.Redis = client
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// dbHost extracts host[:port] from a DSN for logging without credentials.
func dbHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}
