package llm

import _ "embed"

const DefaultPromptVersion = "classify_v1"

var (
	//go:embed prompts/classify_v1.txt
	promptClassifyV1 string
)

// PromptTemplate returns the prompt template text and whether the version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "classify_v1":
		return promptClassifyV1, true
	default:
		return promptClassifyV1, false
	}
}
