package types

import "time"

// CacheScope names a group of public reads that are invalidated together.
type CacheScope string

const (
	ScopeContenido CacheScope = "contenido"
	ScopeServicios CacheScope = "servicios"
	ScopeRecursos  CacheScope = "recursos"
)

// ChangeEvent is pushed to change feed subscribers after an admin write.
type ChangeEvent struct {
	Type      string     `json:"type"`
	Scope     CacheScope `json:"scope"`
	ID        string     `json:"id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

const ChangeEventInvalidated = "invalidated"

// CleanupRecord is a stored file whose deletion failed and is pending retry.
type CleanupRecord struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Intentos    int       `json:"intentos"`
	UltimoError string    `json:"ultimo_error"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CleanupResult summarises one pass over the cleanup queue.
type CleanupResult struct {
	Processed int `json:"processed"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
}
