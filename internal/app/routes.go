package app

import (
	"net/http"

	"github.com/cradoe/kycflow/internal/handler"
	"github.com/cradoe/kycflow/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.UserRepo, app.Gate)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		UserRepo:     app.UserRepo,
		ActivityRepo: app.ActivityRepo,
		Helper:       app.helper,
		Gate:         app.Gate,
		Config:       &app.Config,
		ErrHandler:   app.errorHandler,
	})

	verificationHandler := handler.NewVerificationHandler(&handler.VerificationHandler{
		Orchestrator: app.Orchestrator,
		Helper:       app.helper,
		Kafka:        app.Kafka,
		ErrHandler:   app.errorHandler,
	})

	historyHandler := handler.NewHistoryHandler(&handler.HistoryHandler{
		VerificationRepo: app.VerificationRepo,
		PennyDropRepo:    app.PennyDropRepo,
		PaymentRepo:      app.PaymentRepo,
		ErrHandler:       app.errorHandler,
	})

	metricsHandler := handler.NewMetricsHandler(&handler.MetricsHandler{
		Engine:     app.FunnelEngine,
		ErrHandler: app.errorHandler,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/token", authHandler.HandleAuthToken)

	// verification operations require an authenticated member
	mux.Handle("POST /identity/verify", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(verificationHandler.HandleVerifyIdentity)))
	mux.Handle("POST /bank-challenge/create", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(verificationHandler.HandleCreateBankChallenge)))
	mux.Handle("POST /bank-challenge/confirm", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(verificationHandler.HandleConfirmPayment)))

	// funnel metrics and raw histories are operator-only
	mux.Handle("GET /metrics", middlewareRepo.RequireAdminUser(http.HandlerFunc(metricsHandler.HandleFunnelMetrics)))
	mux.Handle("GET /identity/history", middlewareRepo.RequireAdminUser(http.HandlerFunc(historyHandler.HandleIdentityHistory)))
	mux.Handle("GET /bank-challenge/history", middlewareRepo.RequireAdminUser(http.HandlerFunc(historyHandler.HandleChallengeHistory)))
	mux.Handle("GET /payments/history", middlewareRepo.RequireAdminUser(http.HandlerFunc(historyHandler.HandlePaymentHistory)))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
