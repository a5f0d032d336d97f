package ports

import (
	"context"

	"github.com/forPelevin/viralcut/internal/types"
)

// Downloader fetches the media behind a URL into outDir and returns the local file path.
type Downloader interface {
	Download(ctx context.Context, url, outDir string) (string, error)
}

// TranscriptSource returns the time-coded transcript for a piece of content.
type TranscriptSource interface {
	Fetch(ctx context.Context, req types.TranscriptRequest) ([]types.TranscriptSegment, error)
}

// Renderer cuts each window out of src into outDir and returns one path per window,
// in the same order.
type Renderer interface {
	Render(ctx context.Context, src string, windows []types.Window, outDir string) ([]string, error)
}

type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error
}

// Copywriter writes a title, caption and tags for a clip transcript.
type Copywriter interface {
	Describe(ctx context.Context, transcript string) (types.ClipCopy, error)
}

// Tool is an external binary the pipeline shells out to.
type Tool interface {
	Name() string
	Check(ctx context.Context) error
}
