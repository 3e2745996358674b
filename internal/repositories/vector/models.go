package vector

type SearchRequest struct {
	Embedding  []float32
	Limit      int
	MinScore   float32
	ExcludeIds []string
	Payload    []string
}

type SearchResponse struct {
	Candidates []*ScoredItem
}

type ScoredItem struct {
	Id      string
	Score   float32
	Payload map[string]string
}

type UpsertRequest struct {
	Data []Data
}

type Data struct {
	Id      string
	Payload map[string]interface{}
	Vectors []float32
}

type DeleteRequest struct {
	Ids []string
}
