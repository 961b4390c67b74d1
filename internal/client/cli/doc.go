// Package cli provides the interactive botadmin command-line client.
//
// It wires configuration, the local session database, the session-aware API
// client and the services into a REPL. On start a session persisted by an
// earlier run is restored, so the user stays signed in across restarts.
//
// Key features:
//   - Login / Logout, with the session kept in SQLite
//   - whoami and perms to inspect the session
//   - can and button to evaluate the route and button guards
//   - raw get/post/put/patch/delete calls through the refreshing client
//   - upload of documents to a data source
//   - fingerprint to write the license request file
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
