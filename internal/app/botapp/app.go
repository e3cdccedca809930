package botapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/config"
	"github.com/Evzheva/chatbot-for-dating/internal/infra/httpclient"
	s3infra "github.com/Evzheva/chatbot-for-dating/internal/infra/s3"
	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
	"github.com/Evzheva/chatbot-for-dating/internal/jobs/cleanup"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
	redisrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/redis"
	"github.com/Evzheva/chatbot-for-dating/internal/services/access"
	"github.com/Evzheva/chatbot-for-dating/internal/services/conversation"
	matchsvc "github.com/Evzheva/chatbot-for-dating/internal/services/matching"
	mediasvc "github.com/Evzheva/chatbot-for-dating/internal/services/media"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
	"github.com/Evzheva/chatbot-for-dating/internal/services/notify"
	profilesvc "github.com/Evzheva/chatbot-for-dating/internal/services/profiles"
	ratesvc "github.com/Evzheva/chatbot-for-dating/internal/services/rate"
	reportsvc "github.com/Evzheva/chatbot-for-dating/internal/services/reports"
)

const (
	telegramWorkers      = 8
	telegramTimeout      = 60 * time.Second
	defaultSweepInterval = 10 * time.Minute
)

// messenger is the part of the Telegram client the handlers talk to.
type messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, rows [][]tginfra.InlineButton) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, rows [][]tginfra.InlineButton) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, string, string, error)
}

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	telegram   *tginfra.Bot
	bot        messenger
	admins     *access.Allowlist
	media      *mediasvc.Service
	dispatcher *notify.Dispatcher
	profiles   *profilesvc.Service
	matching   *matchsvc.Service
	moderation *modsvc.Service
	machine    *conversation.Machine
	cleanupJob *cleanup.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}
	if cfg.Postgres.MigrateOnStart {
		if _, err := pgrepo.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	redisClient := redisrepo.NewClient(cfg.Redis)
	if err := redisrepo.Ping(ctx, redisClient); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init redis for bot app: %w", err)
	}

	closeAll := func() {
		pool.Close()
		_ = redisClient.Close()
	}

	var storage mediasvc.ObjectStorage
	if cfg.S3.Enabled {
		s3Client, err := s3infra.NewClient(cfg.S3)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("init s3 for bot app: %w", err)
		}
		storage = mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	}
	media := mediasvc.NewService(storage)

	bot, err := tginfra.NewBot(cfg.Bot.Token, httpclient.New(telegramTimeout), telegramWorkers, logger)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	admins := access.NewAllowlist(cfg.Bot.AdminIDs)
	dispatcher := notify.NewDispatcher(notify.NewTelegramSender(bot), admins, cfg.Notify.Timeout, logger)
	limiter := ratesvc.NewLimiter(redisrepo.NewRateRepo(redisClient), cfg.Limits.LikesPerMinute, cfg.Limits.ReportsPerHour)

	profileRepo := pgrepo.NewProfileRepo(pool)
	profiles := profilesvc.NewService(profileRepo, media, dispatcher, admins, logger)
	matching := matchsvc.NewService(profileRepo, pgrepo.NewLikeRepo(pool), pgrepo.NewMatchRepo(pool), limiter, dispatcher, logger)
	reports := reportsvc.NewService(profileRepo, pgrepo.NewReportRepo(pool), limiter, dispatcher, logger)
	moderation := modsvc.NewService(modsvc.Dependencies{
		Profiles: pgrepo.NewModerationRepo(pool),
		Reports:  pgrepo.NewReportRepo(pool),
		Reader:   profileRepo,
		Photos:   media,
		Notifier: dispatcher,
		Admins:   admins,
		Logger:   logger,
	})

	var (
		store      conversation.Store
		cleanupJob *cleanup.Job
	)
	switch cfg.Conversation.Store {
	case "redis":
		store = conversation.NewRedisStore(redisrepo.NewConversationRepo(redisClient, cfg.Conversation.TTL))
	default:
		memory := conversation.NewMemoryStore(cfg.Conversation.TTL)
		store = memory
		cleanupJob = cleanup.New(memory, logger)
	}

	machine := conversation.NewMachine(conversation.Dependencies{
		Store:      store,
		Profiles:   profiles,
		Reports:    reports,
		Moderation: moderation,
		Admins:     admins,
		Logger:     logger,
	})

	return &App{
		cfg:        cfg,
		logger:     logger,
		postgres:   pool,
		redis:      redisClient,
		telegram:   bot,
		bot:        bot,
		admins:     admins,
		media:      media,
		dispatcher: dispatcher,
		profiles:   profiles,
		matching:   matching,
		moderation: moderation,
		machine:    machine,
		cleanupJob: cleanupJob,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started",
		zap.String("conversation_store", a.cfg.Conversation.Store),
		zap.Bool("photo_archive", a.media.Enabled()),
		zap.Int("admins", len(a.admins.IDs())),
	)

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.runCleanupLoop(ctx)
	}()
	go func() {
		errCh <- a.telegram.Listen(ctx, tginfra.Handlers{
			OnCommand:  a.handleCommand,
			OnText:     a.handleText,
			OnPhoto:    a.handlePhoto,
			OnCallback: a.handleCallback,
		})
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runCleanupLoop(ctx context.Context) error {
	if a.cleanupJob == nil {
		return nil
	}

	interval := a.cfg.Conversation.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.cleanupJob.Run(ctx); err != nil {
				a.logger.Warn("cleanup run failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
