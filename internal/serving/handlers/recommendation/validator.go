package recommendation

import (
	"strings"
)

func validateRecommendRequest(request *Request) (bool, string) {
	if strings.TrimSpace(request.UserId) == "" {
		return false, "user_id is mandatory"
	}
	if request.Limit < 0 {
		return false, "limit cannot be negative"
	}
	if request.Limit > maxLimit {
		return false, "limit cannot exceed 100"
	}
	return true, ""
}
