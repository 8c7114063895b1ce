package issuer

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Similarity scores how well a query matches a set of candidates on a 0-100 scale.
type Similarity interface {
	// Best returns the index of the highest scoring candidate and its score,
	// or -1 when there are no usable candidates. Ties keep the earliest candidate.
	Best(query string, candidates []string) (index int, score float64)
}

const (
	// Above this length ratio only the best aligned window of the longer string counts.
	partialLengthRatio = 1.5
	// Beyond this length ratio partial matches are discounted more heavily.
	longLengthRatio = 8.0
	partialScale    = 0.9
	longScale       = 0.6
)

// MaxQueryRunes bounds how much of a query LevenshteinSimilarity reads. Fuzzy
// matching only sees this prefix of a long document; alias matching still
// scans the whole text.
const MaxQueryRunes = 16 << 10

// LevenshteinSimilarity is a weighted ratio over rune-level edit distance.
//
// Strings of similar length are compared whole. When one is much longer the
// shorter string is slid across it and the best window is scaled down, so a
// short issuer key found verbatim inside a long document scores 60.
type LevenshteinSimilarity struct{}

// Best implements Similarity.
func (LevenshteinSimilarity) Best(query string, candidates []string) (int, float64) {
	q := newRuneText(query)
	if len(q.runes) > MaxQueryRunes {
		q = runeText{runes: q.runes[:MaxQueryRunes]}
		q.s = string(q.runes)
	}

	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if c == "" {
			continue
		}
		s := weightedRatio(q, newRuneText(c))
		if best == -1 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// WeightedRatio scores a against b on a 0-100 scale.
func WeightedRatio(a, b string) float64 {
	return weightedRatio(newRuneText(a), newRuneText(b))
}

type runeText struct {
	s     string
	runes []rune
}

func newRuneText(s string) runeText {
	return runeText{s: s, runes: []rune(s)}
}

func weightedRatio(a, b runeText) float64 {
	la, lb := len(a.runes), len(b.runes)
	if la == 0 || lb == 0 {
		return 0
	}

	short, long := a, b
	ls, ll := la, lb
	if la > lb {
		short, long = b, a
		ls, ll = lb, la
	}

	lengthRatio := float64(ll) / float64(ls)
	if lengthRatio < partialLengthRatio {
		return ratio(short.s, long.s, ls, ll)
	}

	scale := partialScale
	if lengthRatio > longLengthRatio {
		scale = longScale
	}
	return partialRatio(short, long) * scale
}

func ratio(a, b string, la, lb int) float64 {
	d := fuzzy.LevenshteinDistance(a, b)
	return 100 * (1 - float64(d)/float64(max(la, lb)))
}

// partialRatio is the best ratio of short against any equally long window of
// long.
//
// The runes of short missing from a window are a lower bound on its edit
// distance, so windows whose bound cannot beat the current best are skipped.
func partialRatio(short, long runeText) float64 {
	if strings.Contains(long.s, short.s) {
		return 100
	}

	ls := len(short.runes)
	need := make(map[rune]int, ls)
	for _, r := range short.runes {
		need[r]++
	}
	have := make(map[rune]int, len(need))
	missing := ls
	add := func(r rune) {
		if n, ok := need[r]; ok {
			have[r]++
			if have[r] <= n {
				missing--
			}
		}
	}
	remove := func(r rune) {
		if n, ok := need[r]; ok {
			if have[r] <= n {
				missing++
			}
			have[r]--
		}
	}

	var lev levenshtein
	best := 0.0
	for start := 0; start+ls <= len(long.runes); start++ {
		if start == 0 {
			for _, r := range long.runes[:ls] {
				add(r)
			}
		} else {
			remove(long.runes[start-1])
			add(long.runes[start+ls-1])
		}

		if bound := 100 * (1 - float64(missing)/float64(ls)); bound <= best {
			continue
		}
		d := lev.distance(short.runes, long.runes[start:start+ls])
		if r := 100 * (1 - float64(d)/float64(ls)); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// levenshtein computes edit distances over rune slices, reusing its rows.
type levenshtein struct {
	prev, cur []int
}

func (l *levenshtein) distance(a, b []rune) int {
	if cap(l.prev) < len(b)+1 {
		l.prev = make([]int, len(b)+1)
		l.cur = make([]int, len(b)+1)
	}
	prev, cur := l.prev[:len(b)+1], l.cur[:len(b)+1]
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
