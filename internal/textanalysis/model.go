package textanalysis

// Paragraph is a block of document text with its position and declared word count.
type Paragraph struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	WordCount int    `json:"wordCount"`
}

// WordCount pairs a normalized word with its number of occurrences.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Result holds the aggregate statistics of one analysis call.
type Result struct {
	TotalWords      int            `json:"totalWords"`
	UniqueWords     int            `json:"uniqueWords"`
	WordFrequencies map[string]int `json:"wordFrequencies"`
	TopWords        []WordCount    `json:"topWords"`
}
