// Package runs keeps the status of pipeline runs so clients can poll for results.
package runs

import (
	"context"
	"errors"
	"time"

	"github.com/forPelevin/viralcut/internal/types"
)

var ErrNotFound = errors.New("run not found")

// Record is the externally visible state of one pipeline run.
type Record struct {
	ID        string                `json:"id"`
	URL       string                `json:"url"`
	State     string                `json:"state"`
	Error     string                `json:"error,omitempty"`
	ErrorCode string                `json:"error_code,omitempty"`
	Result    *types.PipelineResult `json:"result,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Store persists run records. Update applies fn to the stored record and saves the result;
// it returns ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, id string, fn func(*Record)) error
	Get(ctx context.Context, id string) (Record, error)
}
