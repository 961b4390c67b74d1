// Package guard decides what an authenticated user may open or press, based
// on the permission set of the current session.
package guard

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/botadmin/internal/client/session"
)

const (
	SignInPath    = "/authentication/sign-in"
	DashboardPath = "/dashboard"
	NotFoundPath  = "/page404"
)

// PublicRouteKeys name the routes reachable without a session.
var PublicRouteKeys = []string{"sign-in", "sign-up", "page404"}

// StateReader is the read side of the session.
type StateReader interface {
	State() session.State
}

type Action int

const (
	Allow Action = iota
	Redirect
)

// Decision is the outcome of Resolve. Target is set for redirects.
type Decision struct {
	Action Action
	Target string
}

type Guard struct {
	state StateReader

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

func New(state StateReader) *Guard {
	return &Guard{state: state, compiled: make(map[string]*regexp.Regexp)}
}

// RouteAllowed reports whether path matches one of the menu item patterns.
func (g *Guard) RouteAllowed(path string) bool {
	st := g.state.State()
	return st.IsAuthenticated && g.matchAny(st.Permissions.MenuItems, path)
}

// APIAllowed reports whether path matches one of the API patterns.
func (g *Guard) APIAllowed(path string) bool {
	st := g.state.State()
	return st.IsAuthenticated && g.matchAny(st.Permissions.APIs, path)
}

// ButtonAllowed reports whether key is one of the granted button keys.
func (g *Guard) ButtonAllowed(key string) bool {
	st := g.state.State()
	return st.IsAuthenticated && slices.Contains(st.Permissions.Buttons, key)
}

// Resolve applies the route rules to a navigation to path.
func (g *Guard) Resolve(path string) Decision {
	if !g.state.State().IsAuthenticated {
		return Decision{Action: Redirect, Target: SignInPath}
	}
	if path == "/" && g.RouteAllowed(DashboardPath) {
		return Decision{Action: Redirect, Target: DashboardPath}
	}
	if !g.RouteAllowed(path) {
		return Decision{Action: Redirect, Target: NotFoundPath}
	}
	return Decision{Action: Allow}
}

func (g *Guard) matchAny(patterns []string, path string) bool {
	if slices.Contains(patterns, path) {
		return true
	}
	for _, p := range patterns {
		if g.compile(p).MatchString(path) {
			return true
		}
	}
	return false
}

var paramSegment = regexp.MustCompile(`:\w+`)

// compile turns "/bot/:id/version/:v" into ^/bot/[^/]+/version/[^/]+$. The
// literal parts are quoted.
func (g *Guard) compile(pattern string) *regexp.Regexp {
	g.mu.Lock()
	defer g.mu.Unlock()

	if re, ok := g.compiled[pattern]; ok {
		return re
	}

	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range paramSegment.FindAllStringIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString("[^/]+")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")

	re := regexp.MustCompile(b.String())
	g.compiled[pattern] = re
	return re
}
