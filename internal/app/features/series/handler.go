// internal/app/features/series/handler.go
package series

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// Handler is the feature-level entry point for meeting series.
type Handler struct {
	DB     *mongo.Database
	Series *seriesstore.Store
	Engine *workflow.Engine
	Log    *zap.Logger
}

// NewHandler constructs a series handler bound to a DB, the workflow engine
// and a logger.
func NewHandler(db *mongo.Database, engine *workflow.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Series: seriesstore.New(db),
		Engine: engine,
		Log:    logger,
	}
}
