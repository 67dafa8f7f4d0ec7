package debate

import (
	"context"
	"io"
)

// Backend is the debate REST API
type Backend interface {
	// ListDebates returns every debate, newest first as ordered by the backend
	ListDebates(ctx context.Context) ([]Debate, error)

	// SearchDebates returns scored debates for a query
	SearchDebates(ctx context.Context, req SearchRequest) ([]Debate, error)

	// GetDebate fetches one debate including its OCR text
	GetDebate(ctx context.Context, id string) (*Debate, error)

	// UpdateDebate replaces title and summary
	UpdateDebate(ctx context.Context, id string, req UpdateRequest) error

	// DeleteDebate removes a debate
	DeleteDebate(ctx context.Context, id string) error

	// CreateDebate creates a debate without an image
	CreateDebate(ctx context.Context, req CreateRequest) (*CreateResponse, error)

	// AddImage uploads an image tied to an existing debate
	AddImage(ctx context.Context, req UploadRequest) (*UploadResponse, error)

	// FetchAsset GETs a static asset served by the backend (uploaded images)
	FetchAsset(ctx context.Context, path string) (*Asset, error)

	// Health checks that the backend answers at all
	Health(ctx context.Context) error
}

// Asset is a streamed backend file
type Asset struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Service is the cached read/write surface the views use
type Service interface {
	List(ctx context.Context) ([]Debate, error)
	Search(ctx context.Context, query string) ([]Debate, error)
	Get(ctx context.Context, id string) (*Debate, error)
	Update(ctx context.Context, id string, req UpdateRequest) error
	Delete(ctx context.Context, id string) error
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	AddImage(ctx context.Context, req UploadRequest) (*UploadResponse, error)
}

// CacheService defines the caching surface; implementations must tolerate a missing cache
type CacheService interface {
	GetDebate(ctx context.Context, id string) (*Debate, error)
	SetDebate(ctx context.Context, d *Debate) error
	DeleteDebate(ctx context.Context, id string) error

	GetList(ctx context.Context, key string) ([]Debate, error)
	SetList(ctx context.Context, key string, debates []Debate) error
	InvalidateLists(ctx context.Context) error

	GetResolvedImage(ctx context.Context, path string) (string, error)
	SetResolvedImage(ctx context.Context, path, url string) error

	// ClaimToken returns false when the token was already claimed
	ClaimToken(ctx context.Context, token string) (bool, error)

	Health(ctx context.Context) error
}
