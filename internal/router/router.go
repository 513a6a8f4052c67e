package router

import (
	"database/sql"
	"net/http"

	mem "petclinic/internal/adapters/storage/memory"
	"petclinic/internal/adapters/storage/sqlstore"
	"petclinic/internal/domain/owners"
	"petclinic/internal/middleware"
	"petclinic/internal/platform/config"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/platform/timing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Logger logger.Logger // nil => NewFromEnv

	// Opcional: si viene, usa el store SQL (ya migrado). Si no, in-memory.
	DB *sql.DB

	// Métodos a medir. nil => config.DefaultTimedMethods; vacío => ninguno.
	TimedMethods []string

	Metrics *metrics.Registry // nil => registry nuevo
	Tracer  trace.Tracer      // nil => no-op
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.New()
	}

	in := NewInterceptor(opts.TimedMethods, log, reg, opts.Tracer)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log, reg))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", reg.Handler())

	svc := owners.NewService(OwnersRepository(opts.DB, in))
	owners.RegisterRoutes(r, svc, in)

	return r
}

// NewInterceptor arma el interceptor de tiempos con log, histograma y spans.
func NewInterceptor(methods []string, log logger.Logger, rec timing.Recorder, tracer trace.Tracer) *timing.Interceptor {
	if methods == nil {
		methods = config.DefaultTimedMethods
	}
	return timing.New(timing.NewTags(methods...), log.With(map[string]any{"component": "timing"}),
		timing.WithRecorder(rec),
		timing.WithTracer(tracer),
	)
}

// OwnersRepository elige el store y lo envuelve con el decorator de tiempos.
func OwnersRepository(db *sql.DB, in *timing.Interceptor) owners.Repository {
	var repo owners.Repository
	if db != nil {
		repo = sqlstore.NewOwnersRepo(db)
	} else {
		repo = mem.NewOwnerRepo()
	}
	return owners.NewTimedRepository(repo, in)
}
