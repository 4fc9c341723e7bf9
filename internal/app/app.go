package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cradoe/kycflow/internal/cache"
	"github.com/cradoe/kycflow/internal/config"
	"github.com/cradoe/kycflow/internal/env"
	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/funnel"
	"github.com/cradoe/kycflow/internal/helper"
	"github.com/cradoe/kycflow/internal/repository"
	seeders "github.com/cradoe/kycflow/internal/seeder"
	"github.com/cradoe/kycflow/internal/setu"
	"github.com/cradoe/kycflow/internal/smtp"
	"github.com/cradoe/kycflow/internal/stream"
	"github.com/cradoe/kycflow/internal/token"
	"github.com/cradoe/kycflow/internal/verification"
	"github.com/joho/godotenv"
)

// Essential services and resources are exposed on the application so
// handlers and workers can reach them when they need them.
type Application struct {
	Config config.Config
	DB     *repository.DB
	Logger *slog.Logger
	Mailer *smtp.Mailer
	WG     sync.WaitGroup
	Kafka  *stream.KafkaStream
	Cache  *cache.Cache
	Gate   *token.Gate

	UserRepo         repository.UserRepository
	ActivityRepo     repository.ActivityRepository
	VerificationRepo repository.PanVerificationRepository
	PennyDropRepo    repository.PennyDropRepository
	PaymentRepo      repository.PaymentRepository

	Orchestrator *verification.Orchestrator
	FunnelEngine *funnel.Engine

	errorHandler *errHandler.ErrorHandler
	helper       *helper.HelperRepository
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file once at startup and the
	// resulting value is passed by parameter into every component that
	// needs it. Default values are for development mode only; make sure no
	// production-level value is exposed as a default here.
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	cfg.Setu.BaseURL = env.GetString("SETU_BASE_URL", "https://dg-sandbox.setu.co")
	cfg.Setu.ClientID = env.GetString("SETU_CLIENT_ID", "")
	cfg.Setu.ClientSecret = env.GetString("SETU_CLIENT_SECRET", "")
	cfg.Setu.PanInstanceID = env.GetString("SETU_PRODUCT_INSTANCE_PAN_ID", "")
	cfg.Setu.PennyDropInstanceID = env.GetString("SETU_PRODUCT_INSTANCE_RPD_ID", "")

	// server errors won't be sent via email if NOTIFICATIONS_EMAIL wasn't set
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "KYC Flow <no_reply@example.org>")

	cfg.Admin.Username = env.GetString("ADMIN_USERNAME", "")
	cfg.Admin.Email = env.GetString("ADMIN_EMAIL", "")
	cfg.Admin.Password = env.GetString("ADMIN_PASSWORD", "")

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app := &Application{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
	}

	app.errorHandler = errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)
	app.helper = helper.New(&app.Config.BaseURL, &app.WG, app.errorHandler)

	app.Gate = token.New(cfg.Jwt.SecretKey, cfg.BaseURL)
	app.Kafka = stream.New(cfg.KafkaServers)
	app.Cache = cache.New(cfg.RedisServer, 0)

	app.UserRepo = repository.NewUserRepository(db)
	app.ActivityRepo = repository.NewActivityRepository(db)
	app.VerificationRepo = repository.NewPanVerificationRepository(db)
	app.PennyDropRepo = repository.NewPennyDropRepository(db)
	app.PaymentRepo = repository.NewPaymentRepository(db)

	setuClient := setu.NewClient(&cfg)
	app.Orchestrator = verification.New(setuClient, app.VerificationRepo, app.PennyDropRepo, app.PaymentRepo, logger)
	app.FunnelEngine = funnel.NewEngine(app.VerificationRepo, app.PennyDropRepo, app.Cache, logger)

	seeders.New(app.UserRepo, &app.Config).Run()

	return app, nil
}
