package textanalysis

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func sampleParagraphs() []Paragraph {
	return []Paragraph{
		{Index: 0, Text: "Este é um teste de análise.", WordCount: 6},
		{Index: 1, Text: "Análise de texto é importante.", WordCount: 5},
		{Index: 2, Text: "Python é uma linguagem versátil.", WordCount: 5},
	}
}

func TestAnalyzeTotalsUseDeclaredCounts(t *testing.T) {
	result, err := NewAnalyzer().Analyze(sampleParagraphs(), 5)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.TotalWords != 16 {
		t.Fatalf("expected total 16, got %d", result.TotalWords)
	}
	if result.UniqueWords != 12 {
		t.Fatalf("expected 12 unique words, got %d", result.UniqueWords)
	}
	if result.WordFrequencies["análise"] != 2 {
		t.Fatalf("expected análise=2, got %d", result.WordFrequencies["análise"])
	}
	if len(result.TopWords) != 5 {
		t.Fatalf("expected 5 top words, got %d", len(result.TopWords))
	}
}

func TestAnalyzeTrustsDeclaredCountOverText(t *testing.T) {
	paragraphs := []Paragraph{{Index: 0, Text: "only three words", WordCount: 10}}
	result, err := NewAnalyzer().Analyze(paragraphs, 10)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.TotalWords != 10 {
		t.Fatalf("expected declared total 10, got %d", result.TotalWords)
	}
	if result.UniqueWords != 3 {
		t.Fatalf("expected 3 unique tokens, got %d", result.UniqueWords)
	}
}

func TestAnalyzeWordFrequencies(t *testing.T) {
	paragraphs := []Paragraph{{Index: 0, Text: "teste teste teste palavra palavra outra", WordCount: 6}}
	result, err := NewAnalyzer().Analyze(paragraphs, 10)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.WordFrequencies["teste"] != 3 {
		t.Fatalf("expected teste=3, got %d", result.WordFrequencies["teste"])
	}
	if result.WordFrequencies["palavra"] != 2 {
		t.Fatalf("expected palavra=2, got %d", result.WordFrequencies["palavra"])
	}
}

func TestAnalyzeTopWordsOrder(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []Paragraph
		topN       int
		want       []WordCount
	}{
		{
			name:       "descending counts",
			paragraphs: []Paragraph{{Text: "a a a b b c", WordCount: 6}},
			topN:       3,
			want:       []WordCount{{"a", 3}, {"b", 2}, {"c", 1}},
		},
		{
			name: "ties keep first occurrence across paragraphs",
			paragraphs: []Paragraph{
				{Index: 0, Text: "beta alfa", WordCount: 2},
				{Index: 1, Text: "alfa beta gama", WordCount: 3},
			},
			topN: 3,
			want: []WordCount{{"beta", 2}, {"alfa", 2}, {"gama", 1}},
		},
		{
			name:       "truncated",
			paragraphs: []Paragraph{{Text: "x y y z z z", WordCount: 6}},
			topN:       1,
			want:       []WordCount{{"z", 3}},
		},
		{
			name:       "topN beyond vocabulary",
			paragraphs: []Paragraph{{Text: "um dois", WordCount: 2}},
			topN:       50,
			want:       []WordCount{{"um", 1}, {"dois", 1}},
		},
		{
			name:       "zero",
			paragraphs: []Paragraph{{Text: "um dois", WordCount: 2}},
			topN:       0,
			want:       []WordCount{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewAnalyzer().Analyze(tt.paragraphs, tt.topN)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if !reflect.DeepEqual(result.TopWords, tt.want) {
				t.Fatalf("top words = %+v, want %+v", result.TopWords, tt.want)
			}
		})
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	if _, err := NewAnalyzer().Analyze(nil, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty input, got %v", err)
	}
	if _, err := NewAnalyzer().Analyze(sampleParagraphs(), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative topN, got %v", err)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Análise.", want: "análise"},
		{in: "(TESTE)", want: "teste"},
		{in: "e-mail,", want: "e-mail"},
		{in: "don't", want: "don't"},
		{in: "—", want: ""},
		{in: "2024", want: "2024"},
		{in: "Análise", want: "análise"},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Fatalf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeConcurrentCallsAgree(t *testing.T) {
	analyzer := NewAnalyzer()
	want, err := analyzer.Analyze(sampleParagraphs(), 5)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := analyzer.Analyze(sampleParagraphs(), 5)
			if err != nil {
				errs <- err.Error()
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- "result mismatch"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatalf("concurrent analyze: %s", msg)
	}
}
