package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/application/admin"
	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/application/documents"
	"github.com/raknago/parking-backend/internal/application/otp"
	"github.com/raknago/parking-backend/internal/config"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/infrastructure/db/postgres"
	"github.com/raknago/parking-backend/internal/infrastructure/email"
	"github.com/raknago/parking-backend/internal/infrastructure/memory"
	rabbitmq_pub "github.com/raknago/parking-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/raknago/parking-backend/internal/infrastructure/redis"
	"github.com/raknago/parking-backend/internal/infrastructure/security"
	"github.com/raknago/parking-backend/internal/infrastructure/storage"
	"github.com/raknago/parking-backend/internal/logger"
	"github.com/raknago/parking-backend/internal/metrics"
	http_handlers "github.com/raknago/parking-backend/internal/transport/http/handlers"
	"github.com/raknago/parking-backend/internal/transport/http/middleware"
	"github.com/raknago/parking-backend/internal/transport/http/response"
	"github.com/raknago/parking-backend/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (DBCloser, error)

	NewRedis func(addr string) RedisClient

	NewPublisher func(rabbitURL string) (audit.Publisher, error)

	NewMailer func(mc config.MailConfig) (otp.Mailer, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// DocumentStore is what both store backends provide.
type DocumentStore interface {
	documents.Store
	Count(ctx context.Context, collection string) (int64, error)
	Ping(ctx context.Context) error
	Profile(ctx context.Context, uid string) (domain.Fields, bool, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	lg := logger.Logger

	var cleanupFns []func()

	// 1) store
	store, closeStore, err := openStore(cfg, deps.NewDB)
	if err != nil {
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closeStore)

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr)
		if err := c.Ping(context.Background()); err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; profile cache and otp limits disabled")
			_ = c.Close()
		} else if rc, ok := c.(*redis.Client); ok {
			lg.Info().Msg("redis connected")
			redisCli = rc
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		} else {
			_ = c.Close()
		}
	}

	var profiles access.ProfileReader = store
	var profileCache *redis.CachedProfileReader
	if redisCli != nil {
		profileCache = redis.NewCachedProfileReader(store, redisCli, cfg.ProfileCacheTTL, lg)
		profiles = profileCache
	}

	// 3) publisher
	pub, closePub, err := openPublisher(cfg, deps.NewPublisher, lg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closePub)

	// 4) mailer
	mailer, err := deps.NewMailer(cfg.Mail)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 5) services
	evaluator := access.NewEvaluator(profiles, lg)
	docSvc := documents.NewService(store, evaluator, pub, lg)
	if profileCache != nil {
		docSvc = docSvc.WithProfileCache(profileCache)
	}

	var fwLimiter *redis.FixedWindowLimiter
	var otpLimiter otp.Limiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli)
		otpLimiter = redis.NewWindowThrottle(fwLimiter, cfg.OTPEmailLimit, cfg.OTPEmailWindow)
	}
	otpSvc := otp.NewService(mailer, otpLimiter, lg)

	// 6) handlers + middleware
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	var rlSendOTP func(http.Handler) http.Handler
	if fwLimiter != nil {
		rlSendOTP = middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: "otp.ip",
				Limit:    cfg.OTPIPLimit,
				Window:   cfg.OTPIPWindow,
			},
			response.WriteCallableError,
			lg,
		)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    http_handlers.NewHealthHandler(store),
		Documents: http_handlers.NewDocumentsHandler(docSvc),
		Functions: http_handlers.NewFunctionsHandler(otpSvc),
		Metrics:   metrics.Handler(),

		RequestIDMW: middleware.RequestID,
		AccessLogMW: middleware.AccessLog,
		MetricsMW:   middleware.Metrics,
		IdentityMW:  middleware.Identity(signer, response.WriteError),

		IPLimit:   cfg.RLIPLimit,
		IPWindow:  cfg.RLIPWindow,
		RLSendOTP: rlSendOTP,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	lg.Info().
		Str("store", cfg.Store).
		Bool("redis", redisCli != nil).
		Str("mail_sender", cfg.Mail.Sender).
		Msg("server wired")

	return srv, func() { runCleanup(cleanupFns) }, nil
}

func openStore(cfg *config.Config, newDB func(string) (DBCloser, error)) (DocumentStore, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Logger.Warn().Msg("STORE=memory: documents are not persisted")
		return memory.NewDocumentStore(), func() {}, nil
	}

	db, err := newDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		closeDB()
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, sqlDB); err != nil {
		closeDB()
		return nil, nil, err
	}
	return postgres.NewDocumentStore(sqlDB), closeDB, nil
}

func openPublisher(cfg *config.Config, newPub func(string) (audit.Publisher, error), lg zerolog.Logger) (audit.Publisher, func(), error) {
	if cfg.RabbitURL == "" || newPub == nil {
		lg.Warn().Msg("RABBIT_URL empty: audit events will only be logged")
		return memory.NewNoopPublisher(lg), func() {}, nil
	}

	pub, err := newPub(cfg.RabbitURL)
	if err != nil {
		if cfg.Env == "dev" {
			lg.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			return memory.NewNoopPublisher(lg), func() {}, nil
		}
		return nil, nil, err
	}

	// Configure exchange if supported
	if p, ok := pub.(interface{ SetExchange(string) }); ok {
		p.SetExchange(cfg.Exchange)
	}
	closeFn := func() {}
	if c, ok := pub.(interface{ Close() error }); ok {
		closeFn = func() { _ = c.Close() }
	}
	return pub, closeFn, nil
}

/*
========================
 Admin tooling
========================
*/

// NewAdminService wires the operator service against the database at dsn.
// Audit events go to RabbitMQ when rabbitURL is set, promotions drop the
// API's cached profile when redisAddr is set, and backups go to S3 when a
// bucket is configured.
func NewAdminService(ctx context.Context, dsn, rabbitURL, redisAddr string, backup config.BackupConfig, lg zerolog.Logger) (*admin.Service, func(), error) {
	db, err := config.NewDB(dsn)
	if err != nil {
		return nil, nil, domain.ErrDBUnavailable(err)
	}
	cleanupFns := []func(){func() { _ = db.Close() }}

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	cfg := &config.Config{Env: "dev", RabbitURL: rabbitURL, Exchange: rabbitmq_pub.DefaultExchange}
	pub, closePub, err := openPublisher(cfg, defaultPublisher, lg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closePub)

	store := postgres.NewDocumentStore(db)
	svc := admin.NewService(store, pub, lg)
	if inv, closeInv := openProfileInvalidator(ctx, redisAddr, store, lg); inv != nil {
		cleanupFns = append(cleanupFns, closeInv)
		svc = svc.WithProfileCache(inv)
	}
	if backup.Bucket != "" {
		up, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          backup.Bucket,
			Region:          backup.Region,
			Endpoint:        backup.Endpoint,
			AccessKeyID:     backup.AccessKeyID,
			SecretAccessKey: backup.SecretAccessKey,
			UsePathStyle:    backup.UsePathStyle,
		}, lg)
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		svc = svc.WithUploader(up)
	}
	return svc, func() { runCleanup(cleanupFns) }, nil
}

// openProfileInvalidator connects to the API's Redis so promotions can drop
// the cached profile. Returns nil when addr is empty or Redis is down; the
// promotion then shows after PROFILE_CACHE_TTL.
func openProfileInvalidator(ctx context.Context, addr string, profiles access.ProfileReader, lg zerolog.Logger) (admin.ProfileInvalidator, func()) {
	if addr == "" {
		return nil, nil
	}
	client, err := redis.Dial(ctx, addr)
	if err != nil {
		lg.Warn().Err(err).Msg("redis unavailable; promotions wait for the profile cache ttl")
		return nil, nil
	}
	return redis.NewCachedProfileReader(profiles, client, 0, lg), func() { _ = client.Close() }
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(dsn string) (DBCloser, error) {
			return config.NewDB(dsn)
		},
		NewRedis: func(addr string) RedisClient {
			return redis.New(addr, "", 0)
		},
		NewPublisher: defaultPublisher,
		NewMailer:    defaultMailer,
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

func defaultPublisher(url string) (audit.Publisher, error) {
	return rabbitmq_pub.NewPublisher(url)
}

func defaultMailer(mc config.MailConfig) (otp.Mailer, error) {
	switch mc.Sender {
	case config.MailSenderSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     mc.Host,
			Port:     mc.Port,
			Username: mc.User,
			Password: mc.Password,
			FromName: mc.FromName,
			Timeout:  mc.Timeout,
			Insecure: mc.Insecure,
		}, logger.Logger), nil
	case config.MailSenderFake, "":
		return email.NewFakeSender(logger.Logger), nil
	default:
		return nil, errors.New("bootstrap: unknown mail sender " + mc.Sender)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
