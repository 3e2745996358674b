package similar_products

import "strings"

func validateSimilarRequest(request *Request) (bool, string) {
	if strings.TrimSpace(request.ProductId) == "" {
		return false, "product_id is mandatory"
	}
	if request.Limit < 0 {
		return false, "limit cannot be negative"
	}
	if request.Limit > maxLimit {
		return false, "limit cannot exceed 100"
	}
	return true, ""
}
