package session

import (
	"encoding/json"
	"slices"
)

// Persisted keys.
const (
	KeyUser            = "user"
	KeyPermissions     = "permissions"
	KeyIsAuthenticated = "isAuthenticated"
)

// PermissionSet lists the route patterns, API path patterns and button
// identifiers a user may use.
type PermissionSet struct {
	MenuItems []string `json:"menu_items"`
	APIs      []string `json:"apis"`
	Buttons   []string `json:"buttons"`
}

// EmptyPermissions is the permission set of a logged-out session.
func EmptyPermissions() PermissionSet {
	return PermissionSet{MenuItems: []string{}, APIs: []string{}, Buttons: []string{}}
}

func (p PermissionSet) clone() PermissionSet {
	return PermissionSet{
		MenuItems: slices.Clone(p.MenuItems),
		APIs:      slices.Clone(p.APIs),
		Buttons:   slices.Clone(p.Buttons),
	}
}

// User is the user record returned by the backend. Raw keeps the record as
// received so that it round-trips through the store unchanged.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	// Mongo-style backends send _id instead of id.
	if p.ID == "" {
		var alt struct {
			ID string `json:"_id"`
		}
		_ = json.Unmarshal(data, &alt)
		p.ID = alt.ID
	}
	*u = User(p)
	u.Raw = slices.Clone(data)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	type plain User
	return json.Marshal(plain(u))
}

// State is a snapshot of the session.
type State struct {
	IsAuthenticated bool
	User            *User
	Permissions     PermissionSet
}

// AuthData is the payload of a successful login or permission fetch.
type AuthData struct {
	User        *User          `json:"user"`
	Permissions *PermissionSet `json:"permissions"`
}
