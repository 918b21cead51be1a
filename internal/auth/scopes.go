package auth

// Known OAuth scopes.
const (
	ScopeWorkoutsWrite = "workouts:write"
	ScopeWorkoutsRead  = "workouts:read"
	ScopeSocialWrite   = "social:write"
	ScopeSocialRead    = "social:read"
)
