package flows

import (
	"context"
)

// LogoutResult reports the best-effort server call. Local cleanup has
// always happened when RunLogout returns.
type LogoutResult struct {
	ServerErr error
}

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	ServerLogout func(ctx context.Context, accessToken string) error
	Disarm       func()
	ClearStore   func()
	ClearMemory  func()
	Warn         func(string, ...any)
}

// RunLogout calls the server when a token is held, then unconditionally
// disarms the scheduler and clears persisted and in-memory state. The server
// outcome never affects local cleanup.
func RunLogout(ctx context.Context, accessToken string, deps LogoutDeps) LogoutResult {
	var out LogoutResult
	if accessToken != "" && deps.ServerLogout != nil {
		if err := deps.ServerLogout(ctx, accessToken); err != nil {
			out.ServerErr = err
			if deps.Warn != nil {
				deps.Warn("goSession: server logout failed", "error", err)
			}
		}
	}

	deps.Disarm()
	deps.ClearStore()
	deps.ClearMemory()
	return out
}
