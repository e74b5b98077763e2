package auth

// Well-known scopes guarding the management operations.
const (
	ScopeAdmin = "admin"
	ScopeUsers = "users"
)

// Authorize reports whether every required scope is present in userScopes.
// An empty requirement is always satisfied. Duplicates on either side are
// irrelevant.
func Authorize(userScopes, required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(userScopes))
	for _, s := range userScopes {
		have[s] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}
