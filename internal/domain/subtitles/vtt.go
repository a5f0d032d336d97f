package subtitles

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/viralcut/internal/types"
)

var (
	reCueTiming = regexp.MustCompile(`^((?:\d+:)?\d{2}:\d{2}[.,]\d{3})\s+-->\s+((?:\d+:)?\d{2}:\d{2}[.,]\d{3})`)
	reTag       = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTT reads a WebVTT document into transcript segments.
//
// Auto-generated captions repeat the previous caption line at the top of every cue
// (rolling captions). Lines already emitted by the previous cue are dropped so each
// spoken phrase appears once. Cues with no new text or non-positive duration are skipped.
func ParseVTT(r io.Reader) ([]types.TranscriptSegment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		out      []types.TranscriptSegment
		previous map[string]struct{}
	)
	for sc.Scan() {
		m := reCueTiming.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		start, err := ParseTimestamp(m[1])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimestamp(m[2])
		if err != nil {
			return nil, err
		}

		// Only a truly empty line ends a cue. Auto captions open cues with a line holding
		// a single space.
		var lines []string
		for sc.Scan() {
			raw := strings.TrimRight(sc.Text(), "\r")
			if raw == "" {
				break
			}
			if clean := cleanLine(raw); clean != "" {
				lines = append(lines, clean)
			}
		}

		current := make(map[string]struct{}, len(lines))
		var fresh []string
		for _, ln := range lines {
			current[ln] = struct{}{}
			if _, seen := previous[ln]; seen {
				continue
			}
			fresh = append(fresh, ln)
		}
		if len(lines) > 0 {
			previous = current
		}
		if len(fresh) == 0 || end <= start {
			continue
		}
		out = append(out, types.TranscriptSegment{
			Start:    start,
			Duration: end - start,
			Text:     strings.Join(fresh, " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vtt: %w", err)
	}
	return out, nil
}

// ParseTimestamp converts "HH:MM:SS.mmm" or "MM:SS.mmm" into seconds.
func ParseTimestamp(ts string) (float64, error) {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	sec, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	mult := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		sec += float64(n) * mult
		mult *= 60
	}
	return sec, nil
}

func cleanLine(s string) string {
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
