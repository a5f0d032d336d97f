package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forPelevin/viralcut/internal/pipeerr"
	"github.com/forPelevin/viralcut/internal/types"
)

type fakeSource struct {
	segs  []types.TranscriptSegment
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context, types.TranscriptRequest) ([]types.TranscriptSegment, error) {
	f.calls++
	return f.segs, f.err
}

func TestFetch_FallsBackInOrder(t *testing.T) {
	first := &fakeSource{err: errors.New("no captions")}
	second := &fakeSource{segs: []types.TranscriptSegment{{Start: 0, Duration: 1, Text: "hi"}}}
	third := &fakeSource{}

	c := New(Named{"subs", first}, Named{"whisper", second}, Named{"never", third})
	segs, err := c.Fetch(context.Background(), types.TranscriptRequest{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(segs) != 1 || first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Fatalf("unexpected call pattern: %d %d %d", first.calls, second.calls, third.calls)
	}
}

func TestFetch_AllFail(t *testing.T) {
	c := New(Named{"subs", &fakeSource{err: errors.New("disabled")}}, Named{"whisper", &fakeSource{}})
	_, err := c.Fetch(context.Background(), types.TranscriptRequest{})
	if !pipeerr.Is(err, pipeerr.TranscriptUnavailable) {
		t.Fatalf("expected TranscriptUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "subs: disabled") || !strings.Contains(err.Error(), "whisper: empty transcript") {
		t.Fatalf("expected both causes in %q", err.Error())
	}
}

func TestFetch_NoSources(t *testing.T) {
	if _, err := New().Fetch(context.Background(), types.TranscriptRequest{}); !pipeerr.Is(err, pipeerr.TranscriptUnavailable) {
		t.Fatalf("expected TranscriptUnavailable, got %v", err)
	}
}

func TestFetch_AllEmpty(t *testing.T) {
	c := New(Named{"subs", &fakeSource{}}, Named{"whisper", &fakeSource{segs: []types.TranscriptSegment{}}})
	if _, err := c.Fetch(context.Background(), types.TranscriptRequest{}); !pipeerr.Is(err, pipeerr.EmptyTranscript) {
		t.Fatalf("expected EmptyTranscript, got %v", err)
	}
}
