package openai

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"docanalysis-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptStrict  = "You are a document classification engine. Respond with JSON only. No markdown. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildPrompt creates the chat messages for a classification request. The
// document text is cut to maxChars runes.
func BuildPrompt(input llm.ClassifyInput, model string, maxChars int) []Message {
	return []Message{
		{Role: "system", Content: systemPromptStrict},
		{Role: "developer", Content: resolvePromptTemplate(input, model)},
		{Role: "user", Content: buildUserPrompt(input.FileName, truncateRunes(input.Text, maxChars))},
	}
}

func buildFixPrompt(input llm.ClassifyInput, model string, raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: resolvePromptTemplate(input, model)},
		{Role: "user", Content: fixUserPrompt(raw)},
	}
}

func resolvePromptTemplate(input llm.ClassifyInput, model string) string {
	version := strings.TrimSpace(input.PromptVersion)
	if version == "" {
		version = llm.DefaultPromptVersion
	}
	template, ok := llm.PromptTemplate(version)
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to %s", version, llm.DefaultPromptVersion)
		version = llm.DefaultPromptVersion
	}

	var types strings.Builder
	for _, t := range input.DocumentTypes {
		types.WriteString("- ")
		types.WriteString(t)
		types.WriteString("\n")
	}

	paragraphs := "unknown"
	if input.ParagraphCount > 0 {
		paragraphs = strconv.Itoa(input.ParagraphCount)
	}

	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", version,
		"{{MODEL}}", model,
		"{{DOCUMENT_TYPES}}", strings.TrimRight(types.String(), "\n"),
		"{{PARAGRAPH_COUNT}}", paragraphs,
	)
	return replacer.Replace(template)
}

func buildUserPrompt(fileName, text string) string {
	name := fileName
	if strings.TrimSpace(name) == "" {
		name = "N/A"
	}
	return fmt.Sprintf("File name:\n%s\n\nDocument text:\n%s", name, text)
}

func fixUserPrompt(raw []byte) string {
	return fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
