package access

import (
	"slices"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchThreshold is the minimum Jaro-Winkler similarity for a picked folder
// to stand in for a course folder.
const MatchThreshold = 0.85

// FolderMatch is the best candidate found by MatchFolder.
type FolderMatch struct {
	Folder string
	Score  float64
}

// MatchFolder finds the indexed folder that most likely holds the course
// stored under want. Users often pick a renamed copy ("Go Course (1)",
// "go-course") so an exact comparison is tried first and a fuzzy one second.
// A fuzzy candidate must carry the same numbers as want, so "Part 2" never
// stands in for "Part 1".
func MatchFolder(want string, candidates []string) (FolderMatch, bool) {
	for _, c := range candidates {
		if c == want {
			return FolderMatch{Folder: c, Score: 1}, true
		}
	}

	cleanWant := cleanFolderName(want)
	if cleanWant == "" {
		return FolderMatch{}, false
	}
	for _, c := range candidates {
		if cleanFolderName(c) == cleanWant {
			return FolderMatch{Folder: c, Score: 1}, true
		}
	}

	wantNums := numbers(cleanWant)
	var best FolderMatch
	for _, c := range candidates {
		clean := cleanFolderName(c)
		if !slices.Equal(numbers(clean), wantNums) {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(cleanWant, clean))
		if score > best.Score {
			best = FolderMatch{Folder: c, Score: score}
		}
	}
	if best.Score < MatchThreshold {
		return FolderMatch{}, false
	}
	return best, true
}

// numbers returns the digit runs in s, in order.
func numbers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
}

// cleanFolderName lowercases, strips accents and punctuation, and drops a
// trailing copy marker like "(2)".
func cleanFolderName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = removeAccents(s)

	if i := strings.LastIndex(s, "("); i > 0 && strings.HasSuffix(s, ")") {
		inner := s[i+1 : len(s)-1]
		if inner != "" && strings.IndexFunc(inner, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
			s = s[:i]
		}
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
