package router

import (
	"database/sql"
	"net/http"

	_ "github.com/1008surajshaw/meds-buddy/docs"
	mem "github.com/1008surajshaw/meds-buddy/internal/adapters/storage/memory"
	pg "github.com/1008surajshaw/meds-buddy/internal/adapters/storage/postgres"
	"github.com/1008surajshaw/meds-buddy/internal/domain/adherence"
	"github.com/1008surajshaw/meds-buddy/internal/domain/caretakers"
	"github.com/1008surajshaw/meds-buddy/internal/domain/doses"
	"github.com/1008surajshaw/meds-buddy/internal/domain/medications"
	"github.com/1008surajshaw/meds-buddy/internal/middleware"
	"github.com/1008surajshaw/meds-buddy/internal/platform/logger"
	"github.com/1008surajshaw/meds-buddy/internal/platform/metrics"
	"github.com/1008surajshaw/meds-buddy/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger

	// Pacientes calculados en paralelo en el panel del cuidador. 0 = default.
	Parallelism int
}

// Services expone los servicios de dominio para que main pueda reutilizarlos
// (p.ej. el digest) sin volver a construir los repos.
type Services struct {
	Medications *medications.Service
	Doses       *doses.Service
	Caretakers  *caretakers.Service
	Adherence   *adherence.Service
}

func NewServices(opts Options) *Services {
	var (
		medRepo   medications.Repository
		doseRepo  doses.Repository
		linksRepo caretakers.Repository
	)

	if opts.DB != nil {
		medRepo = pg.NewMedicationsRepo(opts.DB)
		doseRepo = pg.NewDosesRepo(opts.DB)
		linksRepo = pg.NewCaretakersRepo(opts.DB)
	} else {
		medRepo = mem.NewMedicationsRepo()
		doseRepo = mem.NewDosesRepo()
		linksRepo = mem.NewCaretakersRepo()
	}

	medsSvc := medications.NewService(medRepo, doseRepo)
	dosesSvc := doses.NewService(doseRepo, medsSvc)
	adherenceSvc := adherence.NewService(medsSvc, dosesSvc)
	if opts.Parallelism > 0 {
		adherenceSvc.SetParallelism(opts.Parallelism)
	}

	return &Services{
		Medications: medsSvc,
		Doses:       dosesSvc,
		Caretakers:  caretakers.NewService(linksRepo),
		Adherence:   adherenceSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	return NewRouterWithServices(opts, NewServices(opts))
}

func NewRouterWithServices(opts Options, svcs *Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	medications.RegisterRoutes(r, svcs.Medications, svcs.Caretakers)
	doses.RegisterRoutes(r, svcs.Doses, svcs.Caretakers)
	caretakers.RegisterRoutes(r, svcs.Caretakers)
	adherence.RegisterRoutes(r, svcs.Adherence, svcs.Caretakers)

	return r
}
