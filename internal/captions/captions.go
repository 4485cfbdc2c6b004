// Package captions groups word-level transcript chunks into display segments,
// resolves the segment active at a playback time, and exports cue lists.
package captions

import (
	"math"
	"strings"
)

const (
	// maxTokens closes a segment unconditionally.
	maxTokens = 6
	// sentenceTokens closes a segment early when the last word ends a sentence.
	sentenceTokens = 4
)

// Chunk is one word-level token produced by the transcription worker.
// Timestamp is [start, end] in seconds; either bound may be null.
type Chunk struct {
	Text      string     `json:"text"`
	Timestamp []*float64 `json:"timestamp"`
}

// NewChunk builds a chunk with a well-formed timestamp.
func NewChunk(text string, start, end float64) Chunk {
	return Chunk{Text: text, Timestamp: []*float64{&start, &end}}
}

// span returns the chunk's bounds, or false when the timestamp is missing or malformed.
func (c Chunk) span() (float64, float64, bool) {
	if len(c.Timestamp) != 2 || c.Timestamp[0] == nil || c.Timestamp[1] == nil {
		return 0, 0, false
	}
	start, end := *c.Timestamp[0], *c.Timestamp[1]
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return 0, 0, false
	}
	if start < 0 || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// Segment is a group of tokens displayed together.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether t falls inside the segment, bounds included.
func (s Segment) Contains(t float64) bool {
	return s.Start <= t && t <= s.End
}

type builder struct {
	words []string
	start float64
	end   float64
}

func (b *builder) empty() bool { return len(b.words) == 0 }

func (b *builder) add(word string, start, end float64) {
	if b.empty() {
		b.start = start
	}
	b.words = append(b.words, word)
	b.end = math.Max(b.end, end)
}

func (b *builder) attach(punct string, end float64) {
	b.words[len(b.words)-1] += punct
	b.end = math.Max(b.end, end)
}

func (b *builder) full() bool {
	n := len(b.words)
	if n >= maxTokens {
		return true
	}
	return n >= sentenceTokens && endsSentence(b.words[n-1])
}

func (b *builder) segment() Segment {
	return Segment{Text: strings.Join(b.words, " "), Start: b.start, End: b.end}
}

// Group converts chunks into display segments.
//
// A segment closes after six words, or after four or more words when the last
// word ends in '.', '!' or '?'. Punctuation-only tokens are attached to the
// preceding word and do not count as words; with no preceding word at all they
// are dropped. Chunks with a missing or malformed timestamp are skipped.
func Group(chunks []Chunk) []Segment {
	var out []Segment
	var cur builder

	for _, c := range chunks {
		start, end, ok := c.span()
		if !ok {
			continue
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		if punctuationOnly(text) {
			switch {
			case !cur.empty():
				cur.attach(text, end)
			case len(out) > 0:
				last := &out[len(out)-1]
				last.Text += text
				last.End = math.Max(last.End, end)
				continue
			default:
				continue
			}
		} else {
			cur.add(text, start, end)
		}

		if cur.full() {
			out = append(out, cur.segment())
			cur = builder{}
		}
	}

	if !cur.empty() {
		out = append(out, cur.segment())
	}
	return out
}

// Active returns the first segment containing t.
func Active(segments []Segment, t float64) (Segment, bool) {
	for _, s := range segments {
		if s.Contains(t) {
			return s, true
		}
	}
	return Segment{}, false
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}

func punctuationOnly(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(".,!?;:…\"'", r) {
			return false
		}
	}
	return true
}

// Track holds the segments for one video's transcript.
// It is not safe for concurrent use.
type Track struct {
	chunks   []Chunk
	segments []Segment
}

// NewTrack builds a track from chunks.
func NewTrack(chunks []Chunk) *Track {
	t := &Track{}
	t.Set(chunks)
	return t
}

// Set replaces the transcript and regroups it from scratch.
func (t *Track) Set(chunks []Chunk) {
	t.chunks = chunks
	t.segments = Group(chunks)
}

// Segments returns the grouped segments.
func (t *Track) Segments() []Segment { return t.segments }

// Len returns the number of segments.
func (t *Track) Len() int { return len(t.segments) }

// Active returns the segment displayed at t.
func (t *Track) Active(at float64) (Segment, bool) {
	return Active(t.segments, at)
}
