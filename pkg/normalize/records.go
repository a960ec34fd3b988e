package normalize

// TopicIdea is one suggested content topic.
type TopicIdea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// CompetitorSummary describes one competing page.
type CompetitorSummary struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// RankedKeyword is one keyword a page currently ranks for.
type RankedKeyword struct {
	Keyword      string `json:"keyword"`
	Position     int    `json:"position"`
	SearchVolume int    `json:"search_volume"`
	Competition  string `json:"competition"`
	URL          string `json:"url"`
}

// InternalLink is one linkable page on the user's own site.
type InternalLink struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
