// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/bubonicfred/5minitz-sub000/internal/app/features/health"
	minutesfeature "github.com/bubonicfred/5minitz-sub000/internal/app/features/minutes"
	seriesfeature "github.com/bubonicfred/5minitz-sub000/internal/app/features/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/policy/seriespolicy"
	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The service exposes a JSON API: the health endpoint for orchestrators,
// series management under /api/series, and the minutes lifecycle (topics,
// items, details, finalize/unfinalize) under /api/minutes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	var emitter workflow.Emitter = workflow.NopEmitter{}
	if appCfg.FinalizeEventLog {
		emitter = &workflow.LogEmitter{Log: logger}
	}

	engineCfg := workflow.DefaultConfig()
	if appCfg.WriteRetries > 0 {
		engineCfg.WriteRetries = appCfg.WriteRetries
	}

	engine := workflow.NewEngine(
		seriesstore.New(db),
		minutesstore.New(db),
		&seriespolicy.Checker{DB: db},
		emitter,
		engineCfg,
		logger,
	)

	r := chi.NewRouter()

	// Header-based identity for every request; routes decide whether a user
	// is required.
	r.Use(authz.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	seriesHandler := seriesfeature.NewHandler(db, engine, logger)
	r.Mount("/api/series", seriesfeature.Routes(seriesHandler))

	minutesHandler := minutesfeature.NewHandler(db, engine, logger)
	r.Mount("/api/minutes", minutesfeature.Routes(minutesHandler))

	return r, nil
}
