package recommendation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trendora/reco/internal/repositories/upstream/user"
)

var (
	// ErrInsufficientSignal means no signal produced a usable vector.
	ErrInsufficientSignal = errors.New("insufficient signal to build user vector")
	// ErrDimensionMismatch means two vectors that should be combined disagree
	// on dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// aggregateBehaviorVector builds the weighted mean of the item vectors the user
// interacted with. Events whose product has no vector in the store are skipped,
// as are events with an unknown type. Returns nil when nothing contributed.
func aggregateBehaviorVector(events []user.BehaviorEvent, itemVectors map[string][]float32, weights map[string]float32) ([]float32, error) {
	var sum []float32
	var totalWeight float32
	for _, event := range events {
		weight, ok := weights[event.EventType]
		if !ok {
			continue
		}
		vector, ok := itemVectors[event.ProductId]
		if !ok || len(vector) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float32, len(vector))
		}
		if len(vector) != len(sum) {
			return nil, fmt.Errorf("%w: item %s has dimension %d, expected %d",
				ErrDimensionMismatch, event.ProductId, len(vector), len(sum))
		}
		for i, v := range vector {
			sum[i] += weight * v
		}
		totalWeight += weight
	}
	if sum == nil || totalWeight == 0 {
		return nil, nil
	}
	for i := range sum {
		sum[i] /= totalWeight
	}
	return sum, nil
}

// fuseVectors blends the behavior and interest vectors. When only one of the
// two is defined it is returned unchanged. When neither is defined it returns
// ErrInsufficientSignal.
func fuseVectors(behavior, interest []float32, behaviorWeight, interestWeight float32) ([]float32, error) {
	switch {
	case len(behavior) > 0 && len(interest) > 0:
		if len(behavior) != len(interest) {
			return nil, fmt.Errorf("%w: behavior %d vs interest %d",
				ErrDimensionMismatch, len(behavior), len(interest))
		}
		fused := make([]float32, len(behavior))
		for i := range behavior {
			fused[i] = behaviorWeight*behavior[i] + interestWeight*interest[i]
		}
		return fused, nil
	case len(behavior) > 0:
		return behavior, nil
	case len(interest) > 0:
		return interest, nil
	default:
		return nil, ErrInsufficientSignal
	}
}

// interestText joins interest tags into the single string that gets embedded.
func interestText(interests []string) string {
	return strings.Join(interests, " ")
}

// searchText joins the most recent keywords, capped at count, into the string
// that gets embedded for the search signal.
func searchText(keywords []string, count int) string {
	if count > 0 && len(keywords) > count {
		keywords = keywords[:count]
	}
	return strings.Join(keywords, " ")
}
