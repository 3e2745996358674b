package vector

type Database interface {
	// Search runs a similarity query against the product collection. Supports
	// a score floor, id exclusions and payload fetch.
	Search(request *SearchRequest, metricTags []string) (*SearchResponse, error)
	// GetItemVectors fetches the stored embeddings for the given product ids.
	// Missing ids are absent from the result map.
	GetItemVectors(ids []string) (map[string][]float32, error)
	BulkUpsert(upsertRequest UpsertRequest) error
	BulkDelete(deleteRequest DeleteRequest) error
	CreateCollection(dimension int) error
}
