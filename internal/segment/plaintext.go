package segment

import (
	"regexp"
	"strings"
)

// chapterHeading matches lines like "CHAPTER IV. The Title" or
// "CHAPTER 12. The Title". The numeral is kept as the literal matched
// string, Roman or decimal, never converted.
var chapterHeading = regexp.MustCompile(`^CHAPTER\s+([IVXLCDM]+|\d+)\.\s*(.+)$`)

// PlainText segments Gutenberg-style plain text on CHAPTER headings.
type PlainText struct{}

// Segment splits the document at chapter heading lines. Each chapter's
// content runs from its heading line to the line immediately before
// the next heading, or to the end of the document for the last one.
func (PlainText) Segment(doc string) []ChapterDraft {
	lines := strings.Split(doc, "\n")

	type mark struct {
		number, title string
		start         int
	}
	var marks []mark
	for i, line := range lines {
		if m := chapterHeading.FindStringSubmatch(line); m != nil {
			marks = append(marks, mark{number: m[1], title: strings.TrimSpace(m[2]), start: i})
		}
	}

	drafts := make([]ChapterDraft, 0, len(marks))
	for i, mk := range marks {
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		drafts = append(drafts, ChapterDraft{
			Number:  mk.number,
			Title:   mk.title,
			Content: strings.Join(lines[mk.start:end], "\n"),
		})
	}
	return drafts
}
