package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/config"
	"github.com/Evzheva/chatbot-for-dating/internal/infra/httpclient"
	s3infra "github.com/Evzheva/chatbot-for-dating/internal/infra/s3"
	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	authsvc "github.com/Evzheva/chatbot-for-dating/internal/services/auth"
	mediasvc "github.com/Evzheva/chatbot-for-dating/internal/services/media"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
	"github.com/Evzheva/chatbot-for-dating/internal/services/notify"
	"github.com/Evzheva/chatbot-for-dating/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	dispatcher *notify.Dispatcher
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var (
		pool   *pgxpool.Pool
		pinger handlers.Pinger
	)
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		pinger = p
	}

	var storage mediasvc.ObjectStorage
	if cfg.S3.Enabled {
		if c, err := s3infra.NewClient(cfg.S3); err != nil {
			log.Warn("s3 init failed, photo links disabled", zap.Error(err))
		} else {
			storage = mediasvc.NewS3Storage(c, cfg.S3.Bucket)
		}
	}

	admins := access.NewAllowlist(cfg.Bot.AdminIDs)

	// decisions made over HTTP still reach the user through the bot
	var sender notify.Sender
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		if bot, err := tginfra.NewBot(cfg.Bot.Token, httpclient.New(cfg.Notify.Timeout), 1, log); err != nil {
			log.Warn("telegram init failed, decisions will not be announced", zap.Error(err))
		} else {
			sender = notify.NewTelegramSender(bot)
		}
	}
	dispatcher := notify.NewDispatcher(sender, admins, cfg.Notify.Timeout, log)

	moderation := modsvc.NewService(modsvc.Dependencies{
		Profiles: pgrepo.NewModerationRepo(pool),
		Reports:  pgrepo.NewReportRepo(pool),
		Reader:   pgrepo.NewProfileRepo(pool),
		Photos:   mediasvc.NewService(storage),
		Notifier: dispatcher,
		Admins:   admins,
		Logger:   log,
	})
	authService := authsvc.NewService(authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL), admins)

	RegisterRoutes(r, Dependencies{
		Postgres:   pinger,
		Tokens:     authService,
		Moderation: moderation,
		Actions:    pgrepo.NewAdminActionRepo(pool),
		Logger:     log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		dispatcher: dispatcher,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownErr := a.server.Shutdown(ctx)
	a.dispatcher.Wait()
	if a.postgres != nil {
		a.postgres.Close()
	}
	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
