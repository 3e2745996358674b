package similar_products

const (
	defaultLimit = 10
	maxLimit     = 100

	// extra headroom so self matches and near duplicates can be dropped
	// without starving the response.
	searchOverfetch = 10
)

type Request struct {
	ProductId string
	Limit     int
}

type Response struct {
	ProductId string          `json:"product_id"`
	Products  []SimilarResult `json:"products"`
}

type SimilarResult struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageUrl string  `json:"image_url"`
	Score    float32 `json:"score"`
}
