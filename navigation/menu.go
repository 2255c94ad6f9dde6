// Package navigation renders the role-gated menu and owns which auth modal is
// open.
package navigation

import (
	"github.com/jrsteele09/sportify-auth-client/sessions"
	"github.com/jrsteele09/sportify-auth-client/users"
)

// Destination routes
const (
	PathHome            = "/"
	PathDashboard       = "/dashboard"
	PathProfile         = "/profile"
	PathAccountSettings = "/account-settings"
)

type ItemKind int

const (
	// ItemRoute navigates to Path
	ItemRoute ItemKind = iota
	// ItemModal opens Modal
	ItemModal
	// ItemLogout ends the session
	ItemLogout
)

type Item struct {
	Label string
	Kind  ItemKind
	Path  string
	Modal Modal
}

// Menu returns the entries for state. It is a pure function of the session:
// anonymous users get the sign-in and sign-up entries, signed in users get
// their destinations, and Profile only exists for players.
func Menu(state sessions.State) []Item {
	if !state.Authenticated() {
		return []Item{
			{Label: "Sign In as Player", Kind: ItemModal, Modal: ModalPlayerSignIn},
			{Label: "Sign In as Manager", Kind: ItemModal, Modal: ModalManagerSignIn},
			{Label: "Sign Up as Player", Kind: ItemModal, Modal: ModalPlayerSignUp},
			{Label: "Sign Up as Manager", Kind: ItemModal, Modal: ModalManagerSignUp},
		}
	}

	items := []Item{{Label: "Dashboard", Kind: ItemRoute, Path: PathDashboard}}
	if state.Role() == users.RolePlayer {
		items = append(items, Item{Label: "Profile", Kind: ItemRoute, Path: PathProfile})
	}
	return append(items,
		Item{Label: "Account Settings", Kind: ItemRoute, Path: PathAccountSettings},
		Item{Label: "Logout", Kind: ItemLogout, Path: PathHome},
	)
}

// HasProfile reports whether the menu for state contains the Profile entry.
func HasProfile(state sessions.State) bool {
	for _, item := range Menu(state) {
		if item.Kind == ItemRoute && item.Path == PathProfile {
			return true
		}
	}
	return false
}
