package router

import (
	"database/sql"
	"net/http"

	mem "cat-shelter-api/internal/adapters/storage/memory"
	pg "cat-shelter-api/internal/adapters/storage/postgres"
	sqlitedb "cat-shelter-api/internal/adapters/storage/sqlite"
	"cat-shelter-api/internal/cache"
	"cat-shelter-api/internal/config"
	"cat-shelter-api/internal/domain/cats"
	"cat-shelter-api/internal/metrics"
	"cat-shelter-api/internal/middleware"
	"cat-shelter-api/internal/platform/logger"

	_ "cat-shelter-api/docs" // registro del spec swagger generado

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config *config.Config
	Log    logger.Logger

	// Opcional: conexión explícita a Postgres. Si no viene, se resuelve el
	// storage por config (DB_DSN > SQLITE_PATH > in-memory).
	DB *sql.DB

	// Opcional: repo explícito (tests).
	Repo cats.Repository
}

func New(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()
	m := metrics.New()

	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes) // rutas estilo /cats/{id}/adopt/ con o sin barra final
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	repo := opts.Repo
	if repo == nil {
		repo = resolveRepo(opts, cfg, log)
	}

	statsCache := resolveCache(cfg, log)

	svc := cats.NewService(repo)
	cats.RegisterRoutes(r, svc, statsCache, m)

	return r
}

// resolveRepo elige el storage: Postgres explícito o por DSN, SQLite por
// path, in-memory como último recurso (dev).
func resolveRepo(opts Options, cfg *config.Config, log logger.Logger) cats.Repository {
	db := opts.DB
	if db == nil && cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Warn("postgres unavailable, falling back", map[string]any{"error": err.Error()})
		} else {
			db = opened
		}
	}
	if db != nil {
		log.Info("storage: postgres", nil)
		return pg.NewCatsRepo(db)
	}

	if cfg.SQLitePath != "" {
		sdb, err := sqlitedb.Open(cfg.SQLitePath)
		if err != nil {
			log.Warn("sqlite unavailable, falling back", map[string]any{
				"path": cfg.SQLitePath, "error": err.Error(),
			})
		} else {
			log.Info("storage: sqlite", map[string]any{"path": cfg.SQLitePath})
			return sqlitedb.NewCatsRepo(sdb)
		}
	}

	log.Info("storage: in-memory", nil)
	return mem.NewCatRepo()
}

func resolveCache(cfg *config.Config, log logger.Logger) cats.ResponseCache {
	if cfg.ValkeyAddr != "" {
		client, err := cache.Connect(cfg.ValkeyAddr, cfg.ValkeyPassword)
		if err != nil {
			log.Warn("valkey unavailable, using in-process cache", map[string]any{
				"addr": cfg.ValkeyAddr, "error": err.Error(),
			})
		} else {
			log.Info("stats cache: valkey", map[string]any{"addr": cfg.ValkeyAddr})
			return cache.NewValkey(client, cfg.StatsCacheTTL, log)
		}
	}
	return cache.NewMemory(cfg.StatsCacheTTL)
}
