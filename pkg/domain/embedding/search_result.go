package embedding

// SearchResult is one match against the harmful-concept bank.
type SearchResult struct {
	Key   string
	Score float64 // cosine similarity, 1.0 is exact match
	Data  string
}
