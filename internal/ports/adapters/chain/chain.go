// Package chain tries transcript sources in order until one succeeds.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

type Named struct {
	Name   string
	Source ports.TranscriptSource
}

type Transcripts struct {
	sources []Named
}

func New(sources ...Named) *Transcripts {
	return &Transcripts{sources: sources}
}

// Fetch returns the first non-empty transcript. When every source fails the errors
// are joined and classified as TranscriptUnavailable; when every source answered with
// no segments the result is EmptyTranscript.
func (c *Transcripts) Fetch(ctx context.Context, req types.TranscriptRequest) ([]types.TranscriptSegment, error) {
	var errs []error
	empty := 0
	for _, s := range c.sources {
		segs, err := s.Source.Fetch(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if len(segs) > 0 {
			return segs, nil
		}
		empty++
		errs = append(errs, fmt.Errorf("%s: empty transcript", s.Name))
	}
	if len(errs) == 0 {
		return nil, pipeerr.Newf(pipeerr.TranscriptUnavailable, "no transcript sources configured")
	}
	if empty == len(c.sources) {
		return nil, pipeerr.Newf(pipeerr.EmptyTranscript, "transcript returned no textual segments")
	}
	return nil, pipeerr.New(pipeerr.TranscriptUnavailable, errors.Join(errs...))
}
