// Package session holds the authenticated-user state of the client.
//
// A Manager is created once at application start and handed to every
// component that needs the session (the API client clears it on terminal
// expiry, the auth service writes it at login, guards read it). It is the
// only writer of the persisted session keys:
//
//	user             the user record returned at login
//	permissions      the PermissionSet of the user
//	isAuthenticated  a boolean flag
//
// Each value is stored JSON-encoded in a Store. The in-memory State is
// mirrored to an optional Notifier, which plays the role of the application
// state container.
package session
