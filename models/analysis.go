package models

// Analysis categories and sentiments the service accepts from the model.
// Anything outside these lists is normalized to "other" / "neutral".
var (
	AnalysisCategories = []string{
		"news", "blog", "documentation", "ecommerce", "corporate",
		"social", "reference", "entertainment", "other",
	}
	AnalysisSentiments = []string{"positive", "neutral", "negative"}
)

// AnalysisResult is the optional AI enrichment of an extracted page.
// It is advisory: a scrape succeeds with or without it.
type AnalysisResult struct {
	Summary        string            `json:"summary"`
	KeyPoints      []string          `json:"key_points"`
	Category       string            `json:"category"`
	Sentiment      string            `json:"sentiment"`
	Entities       []string          `json:"entities"`
	Topics         []string          `json:"topics"`
	Keywords       []string          `json:"keywords"`
	StructuredData map[string]string `json:"structured_data"`
	Insights       []string          `json:"insights"`
}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	for _, v := range AnalysisCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidSentiment reports whether s is one of the accepted sentiments.
func ValidSentiment(s string) bool {
	for _, v := range AnalysisSentiments {
		if v == s {
			return true
		}
	}
	return false
}
