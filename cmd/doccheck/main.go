package main

// Analyze a local document without the API:
//   go run ./cmd/doccheck -file paper.pdf [-classify] [-json] [-out report.md]

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/compliance"
	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/llm"
	openai "docanalysis-backend/internal/llm/openai"
	"docanalysis-backend/internal/paragraphs"
	"docanalysis-backend/internal/shared/config"
	"docanalysis-backend/internal/shared/util"
	"docanalysis-backend/internal/textanalysis"
)

type output struct {
	FileName       string                 `json:"fileName"`
	Classification *classification.Result `json:"classification,omitempty"`
	TextAnalysis   textanalysis.Result    `json:"textAnalysis"`
	Compliance     compliance.Result      `json:"compliance"`
}

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to the document (pdf, docx, txt or md)")
	classify := flag.Bool("classify", false, "Classify the document before analysis")
	asJSON := flag.Bool("json", false, "Print the analysis as JSON instead of the report")
	outPath := flag.String("out", "", "Path to write the markdown report (optional)")
	topN := flag.Int("top", cfg.TopNWords, "Number of top words to report")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}
	ctx := context.Background()

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}
	fileName := filepath.Base(*filePath)

	mimeType := extract.MimeTypeForName(fileName)
	text, err := extract.ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract text: %v", err))
	}
	paras := paragraphs.DetectWithOptions(text, paragraphs.Options{
		MinWords:         cfg.MinParagraphWords,
		LinePerParagraph: extract.IsPlainText(mimeType, fileName),
	})

	out := output{FileName: fileName}
	if *classify {
		classifier, err := buildClassifier(cfg)
		if err != nil {
			exitErr(err.Error())
		}
		res, err := classifier.Classify(ctx, classification.Input{
			FileName:       fileName,
			Text:           text,
			ContentHash:    util.ContentHash(raw),
			ParagraphCount: len(paras),
		})
		if err != nil {
			exitErr(fmt.Sprintf("classify: %v", err))
		}
		out.Classification = &res
		if !res.IsScientific {
			printJSON(out)
			exitErr(fmt.Sprintf("document is not scientific (%s, confidence %.2f)", res.DocumentType, res.Confidence))
		}
	}

	out.TextAnalysis, err = textanalysis.NewAnalyzer().Analyze(paras, *topN)
	if err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}

	evaluator, err := buildEvaluator(cfg)
	if err != nil {
		exitErr(fmt.Sprintf("load template: %v", err))
	}
	out.Compliance, err = evaluator.ValidateCompliance(out.TextAnalysis.TotalWords, len(paras))
	if err != nil {
		exitErr(fmt.Sprintf("validate: %v", err))
	}
	report, err := evaluator.GenerateReport(compliance.ReportRequest{
		FileName:       fileName,
		WordCount:      out.TextAnalysis.TotalWords,
		ParagraphCount: len(paras),
	})
	if err != nil {
		exitErr(fmt.Sprintf("render report: %v", err))
	}

	if strings.TrimSpace(*outPath) != "" {
		if err := os.WriteFile(*outPath, []byte(report), 0o644); err != nil {
			exitErr(fmt.Sprintf("write report: %v", err))
		}
	}

	if *asJSON {
		printJSON(out)
	} else {
		_, _ = os.Stdout.WriteString(report)
	}
	if !out.Compliance.IsCompliant {
		os.Exit(3)
	}
}

func buildClassifier(cfg config.Config) (classification.Classifier, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, openai.Options{BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.OpenAITimeout})
		if err != nil {
			return nil, err
		}
		return classification.NewLLMClassifier(llm.WithRetry(client, llm.DefaultRetryDelay), cfg.ClassificationThreshold), nil
	default:
		return classification.NewHeuristicClassifier(cfg.ClassificationThreshold), nil
	}
}

func buildEvaluator(cfg config.Config) (*compliance.Evaluator, error) {
	rules := compliance.Rules{MinWords: cfg.MinWords, RequiredParagraphs: cfg.RequiredParagraphs}
	if strings.TrimSpace(cfg.ReportTemplatePath) != "" {
		return compliance.NewEvaluator(rules, cfg.ReportTemplatePath)
	}
	return compliance.NewEvaluatorFromTemplate(rules, compliance.DefaultTemplate)
}

func printJSON(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		exitErr(fmt.Sprintf("encode: %v", err))
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		exitErr(fmt.Sprintf("encode: %v", err))
	}
	buf.WriteByte('\n')
	_, _ = os.Stdout.Write(buf.Bytes())
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
