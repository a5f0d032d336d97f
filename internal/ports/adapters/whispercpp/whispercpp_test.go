package whispercpp

import (
	"context"
	"errors"
	"testing"

	"github.com/forPelevin/viralcut/internal/types"
)

func TestDecode(t *testing.T) {
	in := `{"transcription":[
		{"offsets":{"from":0,"to":1500},"text":" Hello world"},
		{"offsets":{"from":1500,"to":1500},"text":"zero"},
		{"offsets":{"from":2000,"to":4000},"text":"   "},
		{"offsets":{"from":4000,"to":6500},"text":"WOW!"}
	]}`
	segs, err := decode([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segs)
	}
	if segs[0].Start != 0 || segs[0].Duration != 1.5 || segs[0].Text != "Hello world" {
		t.Fatalf("unexpected first segment %+v", segs[0])
	}
	if segs[1].Start != 4 || segs[1].Duration != 2.5 {
		t.Fatalf("unexpected second segment %+v", segs[1])
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := decode([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWhisperLanguage(t *testing.T) {
	tests := map[string]string{"pt-BR": "pt", "en": "en", "zh_Hant": "zh", " ES ": "es"}
	for in, want := range tests {
		if got := whisperLanguage([]string{in}); got != want {
			t.Fatalf("whisperLanguage(%q) = %q, want %q", in, got, want)
		}
	}
	if whisperLanguage(nil) != "" {
		t.Fatalf("expected empty language for nil")
	}
}

type failingAudio struct{}

func (failingAudio) ExtractAudioMono16k(context.Context, string, string) error {
	return errors.New("ffmpeg extract audio: boom")
}

func TestFetch_PropagatesAudioFailure(t *testing.T) {
	a := New("whisper-cli", "model.bin", failingAudio{})
	_, err := a.Fetch(context.Background(), types.TranscriptRequest{MediaPath: "in.mp4", WorkDir: t.TempDir()})
	if err == nil || err.Error() != "ffmpeg extract audio: boom" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFetch_RequiresMedia(t *testing.T) {
	a := New("whisper-cli", "model.bin", failingAudio{})
	if _, err := a.Fetch(context.Background(), types.TranscriptRequest{WorkDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without media path")
	}
}
