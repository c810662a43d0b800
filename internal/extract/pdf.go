package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// paragraphGapRatio is how much wider than the usual line spacing a
	// vertical gap must be to start a new paragraph.
	paragraphGapRatio = 1.4
	// wordGapRatio is the horizontal gap, relative to the font size, read
	// as a space between glyphs.
	wordGapRatio = 0.2
	// Leading of single- and double-spaced text relative to the font size.
	singleSpacing = 1.2
	doubleSpacing = 2.2
)

// extractPDF lays out each page from glyph positions so that paragraph gaps
// become blank lines. Pages are separated by a blank line.
func extractPDF(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageText prefers positioned glyphs and falls back to the library's plain
// text when the content stream yields none.
func pageText(page pdf.Page) (string, error) {
	glyphs, err := pageGlyphs(page)
	if err == nil && len(glyphs) > 0 {
		return layoutLines(groupLines(glyphs)), nil
	}
	return page.GetPlainText(nil)
}

func pageGlyphs(page pdf.Page) (glyphs []pdf.Text, err error) {
	// Content panics on malformed operators.
	defer func() {
		if r := recover(); r != nil {
			glyphs, err = nil, fmt.Errorf("read page content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// textLine is one visual line: glyphs sharing a baseline, in stream order.
type textLine struct {
	Y    float64
	Size float64
	Text string
}

// groupLines merges consecutive glyphs on the same baseline into lines and
// inserts spaces where glyphs are visibly apart.
func groupLines(glyphs []pdf.Text) []textLine {
	var (
		lines   []textLine
		b       strings.Builder
		cur     *textLine
		lastEnd float64
	)
	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(b.String())
			if cur.Text != "" {
				lines = append(lines, *cur)
			}
		}
		b.Reset()
	}

	for _, g := range glyphs {
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if cur == nil || math.Abs(g.Y-cur.Y) > math.Max(cur.Size/2, 1) {
			flush()
			cur = &textLine{Y: g.Y, Size: size}
		} else if g.X-lastEnd > size*wordGapRatio && !strings.HasSuffix(b.String(), " ") && g.S != " " {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	flush()
	return lines
}

// layoutLines joins lines with newlines and adds a blank line wherever the
// drop to the next line is clearly wider than the usual line spacing.
func layoutLines(lines []textLine) string {
	spacing := lineSpacing(lines)
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
			if expected := expectedSpacing(spacing, lines[i-1].Size); expected > 0 &&
				lines[i-1].Y-line.Y > expected*paragraphGapRatio {
				b.WriteByte('\n')
			}
		}
		b.WriteString(line.Text)
	}
	return b.String()
}

// expectedSpacing is the measured spacing unless it exceeds double spacing
// for the font size, which happens on pages made of one-line paragraphs;
// those fall back to single spacing.
func expectedSpacing(measured, size float64) float64 {
	if size <= 1 {
		return measured
	}
	if measured <= 0 || measured > size*doubleSpacing {
		return size * singleSpacing
	}
	return measured
}

// lineSpacing is the lower quartile of the downward gaps between
// consecutive lines, or 0 when there is none.
func lineSpacing(lines []textLine) float64 {
	gaps := make([]float64, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		if gap := lines[i-1].Y - lines[i].Y; gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/4]
}
