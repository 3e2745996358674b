package recommendation

type route int

const (
	routeCacheHit route = iota
	routePersonalize
	routeColdStart
)

// decideRoute picks the serving path for a request. A cached vector wins
// outright, otherwise the fetched signals must be enough to attempt a
// personalized recommendation.
func decideRoute(cacheHit bool, sig *signals, minBehaviorCount int) route {
	if cacheHit {
		return routeCacheHit
	}
	if qualifiesForPersonalization(sig, minBehaviorCount) {
		return routePersonalize
	}
	return routeColdStart
}

// qualifiesForPersonalization decides whether the fetched signals are enough
// to attempt a personalized recommendation. Behaviors qualify only once they
// reach minBehaviorCount, while a single interest tag or search keyword is
// enough on its own.
func qualifiesForPersonalization(sig *signals, minBehaviorCount int) bool {
	if len(sig.Behaviors) >= minBehaviorCount {
		return true
	}
	if len(sig.Interests) > 0 {
		return true
	}
	return len(sig.Keywords) > 0
}
