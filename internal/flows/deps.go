package flows

// Deps groups flow dependency sets. The Controller builds this once and
// delegates each operation to the matching flow.
type Deps struct {
	Login     LoginDeps
	Bootstrap BootstrapDeps
	Refresh   RefreshDeps
	Logout    LogoutDeps
}
