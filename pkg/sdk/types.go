package collections

import "time"

// Item is the analysis metadata of one media item.
type Item struct {
	ID              string
	Category        string
	Headline        string
	Summary         string
	ExtractedText   []string
	Subcategories   []string
	KeyInterest     string
	Themes          []string
	Objects         []string
	LocationTags    []string
	Emotions        []string
	Vibes           []string
	Hashtags        []string
	LikelySource    string
	Attribution     string
	VisualHierarchy []string
}

// SearchHit is a single ranked result. More negative scores are stronger matches.
type SearchHit struct {
	ItemID string
	Score  float64
	Item   *Item // nil when metadata was not joined
}

// Answer is a synthesized answer. Citations are 1-based positions in SearchResponse.Results.
type Answer struct {
	Text      string
	Model     string
	Citations []int
}

// SearchResponse is the search outcome. Answer, Confidence and AnswerTime are nil
// when no answer was attempted; AnswerErr is set when synthesis failed.
type SearchResponse struct {
	Query         string
	Results       []SearchHit
	Answer        *Answer
	Confidence    *float64
	AnswerErr     error
	RetrievalTime time.Duration
	AnswerTime    *time.Duration
}

// RebuildResult summarizes a completed index rebuild.
type RebuildResult struct {
	NumDocuments int
	Skipped      int
	BuildTime    time.Duration
	Generation   string
}

// IndexStatus reports index coverage of the metadata source.
type IndexStatus struct {
	DocCount      int
	TotalItems    int
	IsLoaded      bool
	IndexCoverage float64
	Generation    string
	BuiltAt       time.Time
}
