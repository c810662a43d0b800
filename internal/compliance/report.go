package compliance

import (
	"fmt"
	"strconv"
	"time"
)

const (
	StatusCompliant    = "Conforme"
	StatusNonCompliant = "Não conforme"

	noActionNeeded = "Nenhuma ação necessária"
	defaultNotes   = "Nenhuma observação adicional."
	reportTimeFmt  = "2006-01-02 15:04:05"
)

// ReportRequest carries the caller-supplied inputs of a report.
type ReportRequest struct {
	FileName       string `json:"fileName"`
	WordCount      int    `json:"wordCount"`
	ParagraphCount int    `json:"paragraphCount"`
	DocumentID     string `json:"documentId,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ReportData is every value exposed to the report template.
type ReportData struct {
	FileName            string    `json:"fileName"`
	DocumentID          string    `json:"documentId"`
	AnalysisDatetime    time.Time `json:"analysisDatetime"`
	WordCount           int       `json:"wordCount"`
	ParagraphCount      int       `json:"paragraphCount"`
	MinWords            int       `json:"minWords"`
	RequiredParagraphs  int       `json:"requiredParagraphs"`
	WordDifference      int       `json:"wordDifference"`
	ParagraphDifference int       `json:"paragraphDifference"`
	WordsOK             string    `json:"wordsOk"`
	ParagraphsOK        string    `json:"paragraphsOk"`
	OverallStatus       string    `json:"overallStatus"`
	SummarySentence1    string    `json:"summarySentence1"`
	SummarySentence2    string    `json:"summarySentence2"`
	WordsAction         string    `json:"wordsAction"`
	ParagraphsAction    string    `json:"paragraphsAction"`
	Notes               string    `json:"notes"`
}

func newReportData(rules Rules, req ReportRequest, res Result, now time.Time) ReportData {
	data := ReportData{
		FileName:            req.FileName,
		DocumentID:          req.DocumentID,
		AnalysisDatetime:    now,
		WordCount:           res.WordCount,
		ParagraphCount:      res.ParagraphCount,
		MinWords:            rules.MinWords,
		RequiredParagraphs:  rules.RequiredParagraphs,
		WordDifference:      res.WordDifference,
		ParagraphDifference: res.ParagraphDifference,
		WordsOK:             statusLabel(res.WordsCompliant),
		ParagraphsOK:        statusLabel(res.ParagraphsCompliant),
		OverallStatus:       statusLabel(res.IsCompliant),
		Notes:               req.Notes,
	}
	if data.DocumentID == "" {
		data.DocumentID = "N/A"
	}
	if data.Notes == "" {
		data.Notes = defaultNotes
	}

	data.SummarySentence1 = fmt.Sprintf("O texto possui %d palavras (%s) e %d parágrafos (%s).",
		res.WordCount, differenceText(res.WordDifference, "mínimo"),
		res.ParagraphCount, differenceText(res.ParagraphDifference, "exigido"))
	data.SummarySentence2 = fmt.Sprintf("Com base nas regras estabelecidas, o documento está %s.", data.OverallStatus)

	switch {
	case res.WordsCompliant:
		data.WordsAction = noActionNeeded
	default:
		data.WordsAction = fmt.Sprintf("Adicionar %d palavras", -res.WordDifference)
	}
	switch {
	case res.ParagraphsCompliant:
		data.ParagraphsAction = noActionNeeded
	case res.ParagraphDifference < 0:
		data.ParagraphsAction = fmt.Sprintf("Adicionar %d parágrafo(s)", -res.ParagraphDifference)
	default:
		data.ParagraphsAction = fmt.Sprintf("Fundir/redistribuir para reduzir %d parágrafo(s)", res.ParagraphDifference)
	}
	return data
}

// values flattens the data into the placeholder map used by render.
func (d ReportData) values() map[string]string {
	return map[string]string{
		"file_name":            d.FileName,
		"filename":             d.FileName,
		"document_id":          d.DocumentID,
		"analysis_datetime":    d.AnalysisDatetime.Format(reportTimeFmt),
		"word_count":           strconv.Itoa(d.WordCount),
		"paragraph_count":      strconv.Itoa(d.ParagraphCount),
		"min_words":            strconv.Itoa(d.MinWords),
		"required_paragraphs":  strconv.Itoa(d.RequiredParagraphs),
		"word_difference":      strconv.Itoa(d.WordDifference),
		"paragraph_difference": strconv.Itoa(d.ParagraphDifference),
		"words_ok":             d.WordsOK,
		"paragraphs_ok":        d.ParagraphsOK,
		"overall_status":       d.OverallStatus,
		"summary_sentence_1":   d.SummarySentence1,
		"summary_sentence_2":   d.SummarySentence2,
		"words_action":         d.WordsAction,
		"paragraphs_action":    d.ParagraphsAction,
		"notes":                d.Notes,
	}
}

func statusLabel(ok bool) string {
	if ok {
		return StatusCompliant
	}
	return StatusNonCompliant
}

func differenceText(diff int, reference string) string {
	switch {
	case diff > 0:
		return fmt.Sprintf("%d acima do %s", diff, reference)
	case diff < 0:
		return fmt.Sprintf("%d abaixo do %s", -diff, reference)
	default:
		return "conforme o " + reference
	}
}
