package commands

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	adapterHTTP "github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/notify"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/config"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// app holds everything the subcommands share, wired once from Config.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *sqlx.DB
	redis   *redis.Client
	metrics *metrics.Metrics
	started time.Time

	tokens     *services.TokenService
	views      *services.ViewService
	answers    *services.AnswerService
	periods    *services.PeriodService
	objectives *services.ObjectiveService
	reminders  *workers.ReminderWorker
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.Environment), nil
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// openRedis returns nil when Redis is unreachable; the service then runs
// without the item cache and rate limiting.
func openRedis(cfg *config.Config, log logrus.FieldLogger) *redis.Client {
	rdb, err := cache.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, continuing without cache and rate limiting")
		return nil
	}
	return rdb
}

func newApp(cfg *config.Config, log *logrus.Logger, db *sqlx.DB, rdb *redis.Client) *app {
	clk := clock.NewSystemClock(cfg.Location())

	users := repository.NewPostgresUserRepository(db)
	states := repository.NewPostgresCooldownRepository(db)
	objectiveRepo := repository.NewPostgresObjectiveRepository(db, cfg.Location())

	var items domain.ItemRepository = repository.NewPostgresItemRepository(db)
	if rdb != nil {
		items = repository.NewCachedItemRepository(items, rdb, cfg.ItemCacheTTL, log)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		redis:   rdb,
		metrics: metrics.New(),
		started: time.Now(),

		tokens:     services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour, users),
		views:      services.NewViewService(items, states, clk, log),
		answers:    services.NewAnswerService(items, states, clk, log),
		periods:    services.NewPeriodService(users, clk),
		objectives: services.NewObjectiveService(objectiveRepo, users, clk, log),
	}

	a.reminders = workers.NewReminderWorker(
		users, a.objectives, a.views, notify.NewLogNotifier(log), clk, log,
		workers.WithConcurrency(cfg.ReminderConcurrency),
		workers.WithMetrics(a.metrics),
	)
	return a
}

func (a *app) router() (*gin.Engine, error) {
	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ItemHandler:      adapterHTTP.NewItemHandler(a.views, a.answers, a.log),
		PeriodHandler:    adapterHTTP.NewPeriodHandler(a.periods, a.log),
		ObjectiveHandler: adapterHTTP.NewObjectiveHandler(a.objectives, a.log),
		Tokens:           a.tokens,
		Metrics:          a.metrics,
		Log:              a.log,
		DB:               a.db,
		Redis:            a.redis,
		RateLimit:        a.cfg.RateLimitRequests,
		RateLimitWindow:  a.cfg.RateLimitWindow,
		StartTime:        a.started,
	})
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.db.Close()
}
