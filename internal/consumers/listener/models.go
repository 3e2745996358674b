package listener

// ProductEvent is a product catalog change published by the catalog service.
// Upsert events may carry a precomputed embedding; when they do not, the
// listener embeds the textual fields before indexing.
type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductId string    `json:"product_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Tags      string    `json:"tags"`
	Price     float64   `json:"price"`
	ImageUrl  string    `json:"image_url"`
	Embedding []float32 `json:"embedding,omitempty"`
}

const (
	EventTypeUpsert = "UPSERT"
	EventTypeDelete = "DELETE"
)
