package trends

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultKeywords is the number of keywords kept per item.
const DefaultKeywords = 10

const (
	earlyWindow = 100
	earlyBoost  = 1.5
	phraseBoost = 1.3
)

var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are", "as", "at",
	"be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
	"can", "could", "did", "do", "does", "doing", "down", "during", "each", "few", "for", "from", "further",
	"had", "has", "have", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"i", "if", "in", "into", "is", "it", "its", "itself", "let", "me", "more", "most", "my", "myself",
	"no", "nor", "not", "of", "off", "on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them", "themselves",
	"then", "there", "these", "they", "this", "those", "through", "to", "too", "under", "until", "up", "us",
	"was", "we", "were", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with", "would",
	"you", "your", "yours", "yourself", "yourselves", "via", "per", "get", "got", "make", "made", "one", "new",
	// filler adverbs
	"really", "very", "just", "actually", "basically", "literally", "quite", "simply", "totally", "definitely",
	"probably", "maybe", "also", "still", "even", "ever", "much", "often", "always", "never", "now", "today",
	"already", "almost", "anyway", "rather", "pretty", "truly", "highly", "fairly",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

type candidate struct {
	kw    string
	count int
	first int
	score float64
}

// ExtractKeywords scores unigrams and adjacent two-word phrases of text:
// occurrences, times 1.5 when the keyword shows up in the first 100
// characters, times 1.3 for phrases. The k best are returned, ties broken
// by first appearance.
func ExtractKeywords(text string, k int) []string {
	if k <= 0 {
		k = DefaultKeywords
	}
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })

	keep := make([]bool, len(tokens))
	for i, t := range tokens {
		keep[i] = len([]rune(t)) >= 2 && !IsStopword(t)
	}

	cands := make(map[string]*candidate)
	order := 0
	add := func(kw string) {
		c, ok := cands[kw]
		if !ok {
			c = &candidate{kw: kw, first: order}
			cands[kw] = c
			order++
		}
		c.count++
	}
	for i, t := range tokens {
		if !keep[i] {
			continue
		}
		add(t)
		if i+1 < len(tokens) && keep[i+1] {
			add(t + " " + tokens[i+1])
		}
	}
	if len(cands) == 0 {
		return nil
	}

	early := earlyText(lower)
	list := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		c.score = float64(c.count)
		if strings.Contains(early, " "+c.kw+" ") {
			c.score *= earlyBoost
		}
		if strings.Contains(c.kw, " ") {
			c.score *= phraseBoost
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].first < list[j].first
	})
	if len(list) > k {
		list = list[:k]
	}
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.kw
	}
	return out
}

// earlyText is the first earlyWindow characters with punctuation folded to
// single spaces, so phrases split by commas or line breaks still match.
func earlyText(lower string) string {
	r := []rune(lower)
	if len(r) > earlyWindow {
		r = r[:earlyWindow]
	}
	fields := strings.FieldsFunc(string(r), func(r rune) bool { return !unicode.IsLetter(r) })
	return " " + strings.Join(fields, " ") + " "
}
