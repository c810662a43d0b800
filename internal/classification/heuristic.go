package classification

import (
	"context"
	"regexp"
	"strings"
)

// TypeUnknown is reported by the heuristic when the text does not look
// scientific. It is never produced by the LLM classifier.
const TypeUnknown = "unknown"

type sectionMarker struct {
	name    string
	pattern *regexp.Regexp
}

var scientificMarkers = []sectionMarker{
	{"abstract", regexp.MustCompile(`(?i)\b(abstract|resumo)\b`)},
	{"keywords", regexp.MustCompile(`(?i)\b(keywords|palavras-chave)\b`)},
	{"introduction", regexp.MustCompile(`(?i)\b(introduction|introdução|introducao)\b`)},
	{"methodology", regexp.MustCompile(`(?i)\b(methods?|methodology|metodologia|materiais e métodos)\b`)},
	{"results", regexp.MustCompile(`(?i)\b(results|resultados)\b`)},
	{"discussion", regexp.MustCompile(`(?i)\b(discussion|discussão|discussao)\b`)},
	{"conclusion", regexp.MustCompile(`(?i)\b(conclusions?|conclusão|conclusões|conclusao|considerações finais)\b`)},
	{"references", regexp.MustCompile(`(?i)\b(references|referências|referencias|bibliografia)\b`)},
	{"citations", regexp.MustCompile(`(?i)(\bdoi\b|\bet al\.)`)},
}

// HeuristicClassifier scores the presence of the usual sections of a
// scientific article. It needs no network access.
type HeuristicClassifier struct {
	Threshold float64
}

func NewHeuristicClassifier(threshold float64) *HeuristicClassifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &HeuristicClassifier{Threshold: threshold}
}

func (h *HeuristicClassifier) Classify(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return Result{}, ErrEmptyText
	}

	matched := MatchedMarkers(in.Text)
	score := float64(len(matched)) / float64(len(scientificMarkers))

	docType := TypeUnknown
	if score >= h.Threshold {
		docType = TypeScientificPublication
	}
	res := newResult(docType, score, h.Threshold, SourceHeuristic)
	res.Reasoning = "matched sections: " + strings.Join(matched, ", ")
	if len(matched) == 0 {
		res.Reasoning = "no scientific sections found"
	}
	return res, nil
}

// MatchedMarkers returns the names of the section markers found in text.
func MatchedMarkers(text string) []string {
	var out []string
	for _, m := range scientificMarkers {
		if m.pattern.MatchString(text) {
			out = append(out, m.name)
		}
	}
	return out
}

var _ Classifier = (*HeuristicClassifier)(nil)
