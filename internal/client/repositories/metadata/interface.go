// Package metadata is the SQLite key/value repository backing the persisted
// session.
package metadata

import "github.com/dmitrijs2005/botadmin/internal/client/session"

// Repository stores opaque values by key. Get returns (nil, nil) when the key
// is absent.
type Repository interface {
	session.TxStore
}
