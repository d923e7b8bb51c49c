package api

import (
	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/models"
	"github.com/yuhungliao/mission-control/internal/pipeline"
)

// LoginRequest is the request body for POST /api/auth.
type LoginRequest struct {
	Password string `json:"password" example:"correct horse battery staple" validate:"required"`
}

// OKResponse acknowledges login and logout.
type OKResponse struct {
	OK bool `json:"ok" example:"true" validate:"required"`
}

// RateLimitResponse is returned with 429 during a lockout.
type RateLimitResponse struct {
	Error      string `json:"error" example:"Too many attempts. Try again in 300s" validate:"required"`
	RetryAfter int    `json:"retryAfter" example:"300" validate:"required"`
}

// Memory is the stored memory response type (aliased from the domain layer).
type Memory = models.Memory

// SearchHit is a search result (aliased from the domain layer).
type SearchHit = memoryservice.SearchHit

// Document is an exported workspace document (aliased from the pipeline).
type Document = pipeline.Document

// MemoryListResponse wraps memory listings.
type MemoryListResponse struct {
	Memories []Memory `json:"memories" validate:"required"`
	Count    int      `json:"count" example:"12" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
	Count   int         `json:"count" example:"3" validate:"required"`
}

// SyncExportResponse is the body of GET /api/sync.
type SyncExportResponse struct {
	Files []Document `json:"files" validate:"required"`
	Count int        `json:"count" example:"7" validate:"required"`
}

// SyncReportResponse is the body of POST /api/memories/sync.
type SyncReportResponse struct {
	Created   int `json:"created" example:"2" validate:"required"`
	Updated   int `json:"updated" example:"1" validate:"required"`
	Unchanged int `json:"unchanged" example:"4" validate:"required"`
	Total     int `json:"total" example:"7" validate:"required"`
}
