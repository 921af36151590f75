// Package postgrest stores records through the REST interface of a hosted
// PostgreSQL (PostgREST, as exposed by Supabase under /rest/v1).
package postgrest

import (
	"net/http"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

const (
	restPath  = "/rest/v1"
	userAgent = "spigell/cv-screener"
	// Hosted instances cap responses at 1000 rows.
	pageSize = 1000
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
	PageSize   int
}

var _ store.Store = (*Client)(nil)

// New creates a client for the project at baseURL (for example https://xyz.supabase.co).
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/") + restPath,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		PageSize:  pageSize,
	}
}

// Close is a no-op; the client holds no pooled resources of its own.
func (c *Client) Close() {}
