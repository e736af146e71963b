// internal/app/features/minutes/handler.go
package minutes

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// Handler is the feature-level entry point for minutes and their embedded
// topics and items. All writes go through the workflow engine; the stores
// are only used for reads.
type Handler struct {
	DB      *mongo.Database
	Series  *seriesstore.Store
	Minutes *minutesstore.Store
	Engine  *workflow.Engine
	Log     *zap.Logger
}

// NewHandler constructs a minutes handler bound to a DB, the workflow engine
// and a logger.
func NewHandler(db *mongo.Database, engine *workflow.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Series:  seriesstore.New(db),
		Minutes: minutesstore.New(db),
		Engine:  engine,
		Log:     logger,
	}
}
