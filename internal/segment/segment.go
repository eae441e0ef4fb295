// Package segment splits raw book documents into ordered chapter
// drafts. Two grammars are supported: Project Gutenberg style plain
// text ("CHAPTER IV. Title" headings) and markdown (depth-1 headings).
package segment

import (
	"regexp"
	"strings"
)

// ChapterDraft is one extracted chapter before persistence. Number is
// the literal numeral captured from the source (plain text) or a
// sequential decimal assigned in order of appearance (markdown).
type ChapterDraft struct {
	Number  string
	Title   string
	Content string
}

// Segmenter splits a normalized document into ordered chapter drafts.
type Segmenter interface {
	Segment(doc string) []ChapterDraft
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Normalize converts all line endings to \n, collapses runs of three
// or more newlines down to one blank line, and trims the document.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
