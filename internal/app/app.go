package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/guildqueue/internal/adapter/memsheet"
	postgres "github.com/heartmarshall/guildqueue/internal/adapter/postgres"
	"github.com/heartmarshall/guildqueue/internal/adapter/postgres/audit"
	"github.com/heartmarshall/guildqueue/internal/adapter/postgres/member"
	scoperepo "github.com/heartmarshall/guildqueue/internal/adapter/postgres/scope"
	"github.com/heartmarshall/guildqueue/internal/adapter/postgres/sheet"
	"github.com/heartmarshall/guildqueue/internal/adapter/sheets"
	"github.com/heartmarshall/guildqueue/internal/auth"
	"github.com/heartmarshall/guildqueue/internal/config"
	"github.com/heartmarshall/guildqueue/internal/metrics"
	"github.com/heartmarshall/guildqueue/internal/service/identity"
	"github.com/heartmarshall/guildqueue/internal/service/queue"
	"github.com/heartmarshall/guildqueue/internal/service/router"
	"github.com/heartmarshall/guildqueue/internal/service/scope"
	"github.com/heartmarshall/guildqueue/internal/service/selection"
	"github.com/heartmarshall/guildqueue/internal/transport/middleware"
	"github.com/heartmarshall/guildqueue/internal/transport/rest"
	"github.com/heartmarshall/guildqueue/internal/transport/telegram"
)

// Per-IP request budgets for the guarded HTTP routes.
const (
	adminRequestsPerMinute   = 30
	webhookRequestsPerMinute = 1200
)

type tabularStore interface {
	ReadMatrix(ctx context.Context, sheet string) ([][]string, error)
	WriteMatrix(ctx context.Context, sheet string, rows [][]string) error
	ListSheets(ctx context.Context) ([]string, error)
	CreateSheet(ctx context.Context, sheet string) error
	Ping(ctx context.Context) error
}

// Board is an opened queue board and the resources behind it.
type Board struct {
	*queue.Service

	Pool    *pgxpool.Pool
	Store   tabularStore
	Audit   *audit.Repo
	Metrics *metrics.Metrics
}

// Close releases the database pool.
func (b *Board) Close() {
	b.Pool.Close()
}

// OpenBoard connects to the database, applies migrations and opens the
// configured tabular store behind a queue board.
func OpenBoard(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Board, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	auditRepo := audit.New(pool)
	var sink auditSink = auditRepo

	var store tabularStore
	switch cfg.Sheets.Backend {
	case config.BackendGoogle:
		gs, err := sheets.New(ctx, logger, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsJSON)
		if err != nil {
			pool.Close()
			return nil, err
		}
		store = gs
		sink = fanout{auditRepo, gs.LogSheet(cfg.Sheets.LogSheet)}
	case config.BackendMemory:
		ms := memsheet.New()
		store = ms
		sink = fanout{auditRepo, ms.LogSheet(cfg.Sheets.LogSheet)}
	default:
		store = sheet.New(pool)
	}

	m := metrics.New()
	svc := queue.NewService(logger, store, sink, m, queue.Config{
		Sheet:        cfg.Sheets.AuctionSheet,
		DefaultItems: cfg.Sheets.DefaultItems(),
		StoreTimeout: cfg.Sheets.Timeout,
	})

	logger.InfoContext(ctx, "queue board opened",
		slog.String("backend", cfg.Sheets.Backend),
		slog.String("sheet", cfg.Sheets.AuctionSheet),
	)
	return &Board{Service: svc, Pool: pool, Store: store, Audit: auditRepo, Metrics: m}, nil
}

// Migrate applies pending database migrations and exits.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return postgres.Migrate(ctx, pool, logger)
}

// Run starts the bot, the HTTP server and the selection janitor and blocks
// until ctx is cancelled or one of them fails.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting guildqueue",
		slog.String("version", BuildVersion()),
		slog.String("mode", cfg.Telegram.Mode),
		slog.String("backend", cfg.Sheets.Backend),
	)

	board, err := OpenBoard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer board.Close()

	if err := board.Ensure(ctx); err != nil {
		logger.WarnContext(ctx, "auction sheet bootstrap failed", slog.String("error", err.Error()))
	}

	gate := scope.NewGate(logger, scoperepo.New(board.Pool))
	if err := gate.Reload(ctx); err != nil {
		return err
	}

	resolver := identity.NewResolver(logger, member.New(board.Pool), postgres.NewTxManager(board.Pool), board, identity.Config{
		LeaderID: cfg.Guild.LeaderID,
		Officers: cfg.Guild.Officers(),
	})
	sessions := selection.NewManager(logger, board.Metrics, cfg.Selection.IdleTimeout)

	// The bot is created before the transport so that the router can be
	// configured with the bot's own username; no update is delivered
	// before Deliver starts.
	var tr *telegram.Transport
	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			tr.OnUpdate(ctx, b, update)
		}),
		bot.WithErrorsHandler(func(err error) {
			logger.Warn("telegram api", slog.String("error", err.Error()))
		}),
	}
	if cfg.Telegram.Mode == config.ModeWebhook && cfg.Telegram.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret))
	}

	b, err := bot.New(cfg.Telegram.Token, opts...)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}
	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram get me: %w", err)
	}

	rt := router.New(logger, resolver, gate, board, sessions, router.Config{BotUsername: me.Username})
	tr = telegram.New(logger, rt, board.Metrics, cfg.Telegram.EphemeralTTL)

	if err := tr.RegisterCommands(ctx, b); err != nil {
		logger.WarnContext(ctx, "register commands", slog.String("error", err.Error()))
	}
	if cfg.Telegram.StartupAnnounce {
		tr.Announce(ctx, b, gate.Binding())
	}

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	routes := rest.Routes{
		Health: rest.NewHealthHandler(map[string]rest.Pinger{
			"database": board.Pool,
			"sheets":   board.Store,
		}, BuildVersion()),
		Metrics: board.Metrics.Handler(),
	}
	guards := rest.Guards{Webhook: limiter.Limit(webhookRequestsPerMinute)}

	if cfg.Admin.Enabled() {
		tokens := auth.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.TokenTTL)
		routes.Admin = rest.NewAdminHandler(board, gate, board.Audit, logger)
		guards.Admin = middleware.Chain(limiter.Limit(adminRequestsPerMinute), middleware.AdminAuth(tokens))
	}
	if cfg.Telegram.Mode == config.ModeWebhook {
		routes.Webhook = b.WebhookHandler()
		routes.WebhookPath = cfg.Telegram.WebhookPath
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      rest.NewHandler(logger, routes, guards),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return telegram.Deliver(gctx, b, cfg.Telegram, logger)
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Selection.SweepInterval)
	})
	g.Go(func() error {
		logger.InfoContext(gctx, "http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("guildqueue stopped")
	return nil
}
