package db

// TermQuery matches documents holding any of Terms in Field. SearchTags treats the
// field as TAG, SearchText as TEXT ranked by BM25. Offset and Limit select a page.
type TermQuery struct {
	IndexName    string
	Field        string
	Terms        []string
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64 // BM25 score for text searches, 0 otherwise
	Fields map[string]string
}
