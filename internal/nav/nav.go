// Package nav computes which navigation links are visible for a role. The
// links only control what is rendered in the header; every role-restricted
// view re-checks the role itself, so hiding a link is never the access check.
package nav

import "github.com/bdcmjobs/jobdesk/internal/domain"

// Link is one header navigation entry.
type Link struct {
	Label string
	Path  string
}

// LinksFor returns the navigation links for the given session state, in
// render order.
func LinksFor(user domain.User, authenticated bool) []Link {
	links := []Link{
		{Label: "Home", Path: "/"},
		{Label: "Jobs", Path: "/jobs"},
	}

	if !authenticated {
		return append(links,
			Link{Label: "Login", Path: "/login"},
			Link{Label: "Register", Path: "/register"},
		)
	}

	switch user.Role {
	case domain.RoleJobSeeker:
		links = append(links,
			Link{Label: "My Applications", Path: "/my-applications"},
			Link{Label: "Profile", Path: "/profile"},
		)
	case domain.RoleEmployer:
		links = append(links,
			Link{Label: "My Jobs", Path: "/my-jobs"},
			Link{Label: "Applications", Path: "/applications"},
		)
	case domain.RoleAdmin:
		links = append(links, Link{Label: "Admin Panel", Path: "/admin"})
	}

	return append(links, Link{Label: "Account Settings", Path: "/account"})
}
