package router

import (
	"context"
	"database/sql"
	"net/http"

	mem "baby-care-log/internal/adapters/storage/memory"
	pg "baby-care-log/internal/adapters/storage/postgres"
	"baby-care-log/internal/docs"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/domain/profiles"
	"baby-care-log/internal/middleware"
	"baby-care-log/internal/platform/logger"
	"baby-care-log/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger
}

// NewRouter arma el server de referencia: perfiles, lista de eventos y el
// endpoint de comandos.
func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))

	var (
		profileRepo profiles.Repository
		eventRepo   events.Repository
	)
	if opts.DB != nil {
		if err := pg.EnsureSchema(context.Background(), opts.DB); err != nil {
			return nil, err
		}
		profileRepo = pg.NewProfilesRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		log.Info("storage: postgres", nil)
	} else {
		profileRepo = mem.NewProfileRepo()
		eventRepo = mem.NewEventRepo()
		log.Info("storage: in-memory", nil)
	}

	profilesSvc := profiles.NewService(profileRepo)
	eventsSvc := events.NewService(eventRepo)

	profiles.RegisterRoutes(r, profilesSvc)
	events.RegisterRoutes(r, eventsSvc, profilesSvc)

	return r, nil
}
