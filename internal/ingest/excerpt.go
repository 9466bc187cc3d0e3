package ingest

import (
	"strings"
)

const (
	// WordsPerMinute is the reading speed used for computed reading times.
	WordsPerMinute = 200
	// ExcerptWords is the length of a generated description.
	ExcerptWords = 28
	ellipsis     = "…"
)

var markupStripper = strings.NewReplacer(
	"`", "", "*", "", "_", "", ">", "", "#", "", "-", "",
	"!", "", "[", "", "]", "", "(", "", ")", "",
)

// StripMarkup removes inline markdown punctuation and collapses whitespace.
func StripMarkup(body string) string {
	return strings.Join(strings.Fields(markupStripper.Replace(body)), " ")
}

// Excerpt returns the first n words of the stripped body. The ellipsis is
// appended only when words were cut off.
func Excerpt(body string, n int) string {
	words := strings.Fields(StripMarkup(body))
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + ellipsis
}

func WordCount(body string) int {
	return len(strings.Fields(StripMarkup(body)))
}

// ReadingMinutes is ceil(words / WordsPerMinute), never less than one.
func ReadingMinutes(words int) int {
	m := (words + WordsPerMinute - 1) / WordsPerMinute
	if m < 1 {
		return 1
	}
	return m
}
