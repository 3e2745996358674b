package semantic_search

import "strings"

const maxCandidates = 500

func validateRerankRequest(request *Request) (bool, string) {
	if strings.TrimSpace(request.Keyword) == "" {
		return false, "keyword is mandatory"
	}
	if len(request.ProductIds) > maxCandidates {
		return false, "productIds cannot exceed 500"
	}
	return true, ""
}
