package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/session"
)

// NewRouter creates a chi router with every Mission Control route mounted.
// All routes except the public ones sit behind the session gate; GET
// /api/sync is guarded by syncToken instead.
func NewRouter(svc *memoryservice.Service, gate *session.Gate, syncToken string) chi.Router {
	h := NewHandler(svc)
	auth := NewAuthHandler(gate)

	r := chi.NewRouter()
	r.Use(SessionGate(gate))

	// Session.
	r.Post("/api/auth", auth.Login)
	r.Post("/api/logout", auth.Logout)

	// Workspace export for the sync client.
	r.With(SyncTokenAuth(syncToken)).Get("/api/sync", h.ExportSync)

	// Memories.
	r.Post("/api/memories/sync", h.SyncMemories)
	r.Get("/api/memories", h.ListMemories)
	r.Get("/api/memories/search", h.SearchMemories)
	r.Get("/api/memories/*", h.GetMemory)
	r.Delete("/api/memories/*", h.DeleteMemory)

	// Slug-only paths. GET /api/memories/search shadows the memory with slug
	// "search"; these routes reach every slug.
	r.Get("/api/memory/*", h.GetMemory)
	r.Delete("/api/memory/*", h.DeleteMemory)

	r.Get("/", h.Index)

	return r
}
