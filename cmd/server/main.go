package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arhyth/bankxlive"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfp := flag.String("config", "config.yml", "path to configuration file")
	envf := flag.String("env", ".env", "optional dotenv file with secrets")
	flag.Parse()

	if err := godotenv.Load(*envf); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal().Err(err).Msg("error loading env file")
	}
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	cfg, err := bankxlive.LoadConfig(cfgfl)
	cfgfl.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading config file")
	}
	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(lvl)

	journal := bankxlive.NewNopJournal()
	if cfg.Database.ConnectionString != "" {
		pg, err := bankxlive.NewPostgresJournal(cfg.Database.ConnectionString, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("error starting database")
		}
		journal = pg
	}
	defer journal.Close()

	store, err := bankxlive.OpenStore(bankxlive.StoreConfig{
		NodeID:         cfg.Ledger.NodeID,
		OpeningBalance: cfg.OpeningBalance(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening store")
	}
	defer store.Close()

	hub := bankxlive.NewHub(bankxlive.HubConfig{
		AllowedOrigins: cfg.Notifications.AllowedOrigins,
		WriteTimeout:   cfg.Notifications.WriteTimeout,
		PongWait:       cfg.Notifications.PongWait,
		SendBuffer:     cfg.Notifications.SendBuffer,
	}, &logger)
	defer hub.Close()

	brk := cfg.Gateway.Breaker
	gw := bankxlive.NewBreakerGateway(
		bankxlive.NewPaystackClient(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.Timeout),
		bankxlive.BreakerSettings("paystack", brk.MaxRequests, brk.ConsecutiveFailures, brk.Interval, brk.Timeout),
	)

	core := bankxlive.NewService(store, gw, hub, &logger,
		bankxlive.WithFraudSignal(bankxlive.NewFraudSignal(cfg.FraudThresholds())),
		bankxlive.WithJournal(journal),
		bankxlive.WithHashCost(cfg.Auth.HashCost),
		bankxlive.WithCallbackURL(cfg.Gateway.CallbackURL),
	)
	for _, adm := range cfg.Auth.Admins {
		acct, err := core.CreateAdmin(context.Background(), bankxlive.CreateAccountReq{
			Username: adm.Username,
			Password: adm.Password,
			FullName: adm.FullName,
			Email:    adm.Email,
		})
		if err != nil {
			logger.Fatal().Err(err).Str("username", adm.Username).Msg("error creating admin account")
		}
		logger.Info().Str("acctID", acct.AcctID).Str("username", adm.Username).Msg("admin account ready")
	}

	lim := cfg.Limits
	svc := bankxlive.Chain(core,
		bankxlive.NewValidationMiddleware(store.Accounts),
		bankxlive.NewLimitMiddleware(bankxlive.NewServiceLimits(lim.Transfer, lim.Payment, lim.Statement, lim.AcquireTimeout)),
	)
	auth := bankxlive.NewAuthenticator(store.Accounts, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	webhook := bankxlive.NewWebhookHandler(svc, cfg.Gateway.WebhookSecret, &logger)
	hndlr := bankxlive.NewHTTPHandler(svc, auth, hub, webhook, &logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: hndlr,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Err(err).Msg("error shutting down server")
	}
}
