// Package session owns the authentication lifecycle of the FitCheck client:
// the current user identity, the bearer token, its optional expiry, and the
// transitions between unauthenticated, loading and authenticated states.
//
// The Manager is created once at the composition root and injected into
// every consumer; there is no ambient global auth state. Its lifecycle is
// explicit:
//
//	mgr := session.NewManager(apiClient, store,
//		session.WithEventBus(bus),
//		session.WithRememberMeTTL(7*24*time.Hour),
//	)
//	if err := mgr.Initialize(ctx); err != nil { ... }
//
// Initialize resolves the persisted state exactly once at process start.
// Until it returns, consumers observe StateLoading and must not branch on
// authentication. Expiry is evaluated only here: a persisted expiresAt in
// the past purges storage and yields unauthenticated.
//
// The in-memory session and the persisted storage collaborator never diverge
// for longer than one reconciliation pass: sign-in persists before it
// transitions, and logout transitions even when purging storage fails.
package session
