// ABOUTME: Pure navigation guard deciding between allowing and redirecting a navigation
// ABOUTME: Depends only on the target route and whether the session is authenticated

package router

// Decision is the outcome of the guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allowed is the decision that lets navigation proceed.
var Allowed = Decision{Allow: true}

// RedirectTo is a decision that sends navigation elsewhere.
func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

// Guard decides whether navigating to r is allowed.
// Protected routes need a session; login and register bounce signed-in users home.
func Guard(r Route, authenticated bool) Decision {
	if r.RequiresAuth && !authenticated {
		return RedirectTo(PathLogin)
	}
	if (r.Path == PathLogin || r.Path == PathRegister) && authenticated {
		return RedirectTo(PathRoot)
	}
	return Allowed
}
