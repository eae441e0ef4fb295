package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// mdHeading matches any markdown heading line; depth is decided by the
// number of leading hashes. Only depth-1 headings delimit chapters,
// deeper headings stay inside chapter content.
var mdHeading = regexp.MustCompile(`(?m)^(#+)\s*(.+)$`)

// Markdown segments a markdown body on depth-1 headings.
type Markdown struct{}

// Segment assigns sequential decimal numbers ("1", "2", ...) in order
// of appearance, regardless of any numbering inside the heading text.
// A chapter's span runs from its heading through the character before
// the next depth-1 heading, or to the end of the document.
func (Markdown) Segment(doc string) []ChapterDraft {
	matches := mdHeading.FindAllStringSubmatchIndex(doc, -1)

	type mark struct {
		title string
		start int
	}
	var marks []mark
	for _, m := range matches {
		hashes := doc[m[2]:m[3]]
		if len(hashes) != 1 {
			continue
		}
		marks = append(marks, mark{
			title: strings.TrimSpace(doc[m[4]:m[5]]),
			start: m[0],
		})
	}

	drafts := make([]ChapterDraft, 0, len(marks))
	for i, mk := range marks {
		end := len(doc)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		drafts = append(drafts, ChapterDraft{
			Number:  strconv.Itoa(i + 1),
			Title:   mk.title,
			Content: strings.TrimSpace(doc[mk.start:end]),
		})
	}
	return drafts
}
