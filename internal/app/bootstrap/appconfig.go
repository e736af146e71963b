// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to this application lives:
// database connection details, the schema migration target, and domain
// behavior toggles.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// SchemaVersion is the schema migration target applied at startup.
	// -1 means "migrate to latest".
	SchemaVersion int

	// FinalizeEventLog enables structured logging of finalize events
	// (the hook point used in place of mail delivery).
	FinalizeEventLog bool

	// WriteRetries is how many times a read-modify-write cycle retries
	// after losing an optimistic concurrency race.
	WriteRetries int
}
