package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/botadmin/internal/client/guard"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in")

// Login prompts for credentials and signs in. The password is wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	st, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	name := st.User.Name
	if name == "" {
		name = st.User.Email
	}
	printOK(a.out, "Welcome, "+name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printOK(a.out, "Logged out")
	return nil
}

// WhoAmI prints the user of the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.State()
	if !st.IsAuthenticated || st.User == nil {
		return errNotLoggedIn
	}
	fmt.Fprintf(a.out, "id:    %s\nemail: %s\nname:  %s\nrole:  %s\n",
		st.User.ID, st.User.Email, st.User.Name, st.User.Role)
	return nil
}

// Perms prints the permission set, fetching it first when the menu list is
// empty.
func (a *App) Perms(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.auth.EnsurePermissions(ctx)

	p := a.session.State().Permissions
	fmt.Fprintf(a.out, "menu items: %s\napis:       %s\nbuttons:    %s\n",
		strings.Join(p.MenuItems, ", "), strings.Join(p.APIs, ", "), strings.Join(p.Buttons, ", "))
	return nil
}

// Can prints where the route guard sends the given route.
func (a *App) Can(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: can <route>")
	}
	route := args[0]
	if !a.isLoggedIn() {
		// Public pages are reachable without a session.
		for _, key := range guard.PublicRouteKeys {
			if strings.HasSuffix(route, "/"+key) {
				printOK(a.out, "allow "+route)
				return nil
			}
		}
	}

	d := a.guard.Resolve(route)
	if d.Action == guard.Redirect {
		printWarn(a.out, fmt.Sprintf("redirect %s -> %s", route, d.Target))
		return nil
	}
	printOK(a.out, "allow "+route)
	return nil
}

// Button reports whether a secured button is shown.
func (a *App) Button(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: button <key>")
	}
	if a.guard.ButtonAllowed(args[0]) {
		printOK(a.out, "visible "+args[0])
	} else {
		printWarn(a.out, "hidden "+args[0])
	}
	return nil
}
