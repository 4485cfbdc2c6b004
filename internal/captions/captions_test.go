package captions

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// words builds chunks one second apart.
func words(ws ...string) []Chunk {
	chunks := make([]Chunk, len(ws))
	for i, w := range ws {
		chunks[i] = NewChunk(w, float64(i), float64(i)+1)
	}
	return chunks
}

func TestGroup_ClosesAtSixWords(t *testing.T) {
	got := Group(words("one", "two", "three", "four", "five", "six", "seven"))
	want := []Segment{
		{Text: "one two three four five six", Start: 0, End: 6},
		{Text: "seven", Start: 6, End: 7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_ClosesAtFourOnSentenceEnd(t *testing.T) {
	got := Group(words("we", "did", "it", "again!", "next", "part"))
	want := []Segment{
		{Text: "we did it again!", Start: 0, End: 4},
		{Text: "next part", Start: 4, End: 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_SentenceEndBeforeFourDoesNotClose(t *testing.T) {
	got := Group(words("Hi.", "this", "is", "fine", "ok"))
	assert.Len(t, got, 1)
	assert.Equal(t, "Hi. this is fine ok", got[0].Text)
}

func TestGroup_PunctuationOnlyTokensAttach(t *testing.T) {
	got := Group(words("The", ".", "is", "a", "test", "sentence", "."))
	want := []Segment{
		{Text: "The. is a test sentence.", Start: 0, End: 7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_AttachedPunctuationClosesAtFour(t *testing.T) {
	got := Group(words("this", "is", "a", "test", "?", "more"))
	want := []Segment{
		{Text: "this is a test?", Start: 0, End: 5},
		{Text: "more", Start: 5, End: 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_PunctuationAfterClosedSegment(t *testing.T) {
	got := Group(words("a", "b", "c", "d", "e", "f", "."))
	want := []Segment{{Text: "a b c d e f.", Start: 0, End: 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_LeadingPunctuationDropped(t *testing.T) {
	got := Group(words(".", "hello"))
	assert.Equal(t, []Segment{{Text: "hello", Start: 1, End: 2}}, got)
}

func TestGroup_SkipsMalformedTimestamps(t *testing.T) {
	start := 2.0
	nan := math.NaN()
	back := 1.0
	chunks := []Chunk{
		NewChunk("kept", 0, 1),
		{Text: "missing", Timestamp: nil},
		{Text: "open", Timestamp: []*float64{&start, nil}},
		{Text: "nan", Timestamp: []*float64{&nan, &start}},
		{Text: "backwards", Timestamp: []*float64{&start, &back}},
		{Text: "three", Timestamp: []*float64{&start}},
		NewChunk("also", 3, 4),
	}
	got := Group(chunks)
	assert.Equal(t, []Segment{{Text: "kept also", Start: 0, End: 4}}, got)
}

func TestGroup_TrimsWhitespaceTokens(t *testing.T) {
	got := Group(words(" Hello", " world", "  "))
	assert.Equal(t, []Segment{{Text: "Hello world", Start: 0, End: 2}}, got)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
}

func TestGroup_Deterministic(t *testing.T) {
	in := words("a", "b", "c", "d.", "e", "f", "g", "h", "i", "j")
	assert.Equal(t, Group(in), Group(in))
}

func TestActive(t *testing.T) {
	segs := []Segment{
		{Text: "first", Start: 0, End: 2},
		{Text: "second", Start: 2, End: 4},
		{Text: "third", Start: 6, End: 8},
	}

	tests := []struct {
		at   float64
		want string
		ok   bool
	}{
		{0, "first", true},
		{2, "first", true}, // shared boundary resolves to the earlier segment
		{3.5, "second", true},
		{5, "", false},
		{8, "third", true},
		{9, "", false},
	}
	for _, tt := range tests {
		got, ok := Active(segs, tt.at)
		assert.Equal(t, tt.ok, ok, "at %v", tt.at)
		assert.Equal(t, tt.want, got.Text, "at %v", tt.at)
	}
}

func TestTrack_SetRecomputes(t *testing.T) {
	tr := NewTrack(words("a", "b"))
	assert.Equal(t, 1, tr.Len())

	tr.Set(words("a", "b", "c", "d", "e", "f", "g"))
	assert.Equal(t, 2, tr.Len())

	seg, ok := tr.Active(6.5)
	assert.True(t, ok)
	assert.Equal(t, "g", seg.Text)

	tr.Set(nil)
	_, ok = tr.Active(0.5)
	assert.False(t, ok)
}
