// Package paragraphs splits extracted document text into paragraph records.
package paragraphs

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"docanalysis-backend/internal/textanalysis"
)

// Options tunes detection. The zero value keeps every non-empty paragraph.
type Options struct {
	// MinWords drops fragments with fewer words, such as running headers
	// and page numbers.
	MinWords int
	// LinePerParagraph treats every line as a paragraph when the text has no
	// blank line at all. Meant for plain text typed one paragraph per line;
	// extracted PDF and DOCX text already marks breaks with blank lines.
	LinePerParagraph bool
}

// Detect splits text with default options.
func Detect(text string) []textanalysis.Paragraph {
	return DetectWithOptions(text, Options{})
}

// DetectWithOptions splits text on blank lines; lines inside a block are
// joined. Indices are contiguous over the kept paragraphs.
func DetectWithOptions(text string, opts Options) []textanalysis.Paragraph {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := splitBlocks(text)
	if opts.LinePerParagraph && len(blocks) == 1 && len(blocks[0]) > 1 {
		lines := blocks[0]
		blocks = make([][]string, 0, len(lines))
		for _, line := range lines {
			blocks = append(blocks, []string{line})
		}
	}

	out := make([]textanalysis.Paragraph, 0, len(blocks))
	for _, block := range blocks {
		body := joinLines(block)
		if body == "" {
			continue
		}
		words := len(strings.Fields(body))
		if words < opts.MinWords {
			continue
		}
		out = append(out, textanalysis.Paragraph{
			Index:     len(out),
			Text:      body,
			WordCount: words,
		})
	}
	return out
}

// Count returns the number of paragraphs DetectWithOptions would produce.
func Count(text string, opts Options) int {
	return len(DetectWithOptions(text, opts))
}

func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// joinLines merges the lines of one paragraph. A line ending in a hyphen
// right after a letter is glued to the next line without the hyphen.
func joinLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i < len(lines)-1 && hyphenated(line) {
			b.WriteString(line[:len(line)-1])
			continue
		}
		b.WriteString(line)
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func hyphenated(line string) bool {
	if !strings.HasSuffix(line, "-") || len(line) < 2 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(line[:len(line)-1])
	return unicode.IsLetter(r)
}
