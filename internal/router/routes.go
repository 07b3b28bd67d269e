// ABOUTME: Static route table and path matching for client-side navigation
// ABOUTME: Child routes of "/" inherit its authentication requirement

package router

import (
	"strings"
)

// View identifiers rendered for each route.
const (
	ViewLogin           = "login"
	ViewRegister        = "register"
	ViewLayout          = "layout"
	ViewDashboard       = "dashboard"
	ViewFiles           = "files"
	ViewReview          = "review"
	ViewGenerate        = "generate"
	ViewDocuments       = "documents"
	ViewDocumentEdit    = "document-edit"
	ViewTemplates       = "templates"
	ViewAuditLogs       = "audit-logs"
	ViewSystemHealth    = "system-health"
	ViewRulesManagement = "rules-management"
)

// Well-known paths.
const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathRoot     = "/"
)

// Route describes one navigable location.
type Route struct {
	Path         string
	Name         string
	View         string
	Title        string
	RequiresAuth bool
	// Redirect, when set, sends navigation on to another path.
	Redirect string
}

// Params holds the values of :name segments in a matched path.
type Params map[string]string

// Table is the full route table in match order.
var Table = buildTable()

func buildTable() []Route {
	children := []Route{
		{Path: "/dashboard", Name: "Dashboard", View: ViewDashboard, Title: "Dashboard"},
		{Path: "/files", Name: "Files", View: ViewFiles, Title: "File management"},
		{Path: "/review/:fileId", Name: "Review", View: ViewReview, Title: "Document review"},
		{Path: "/generate", Name: "Generate", View: ViewGenerate, Title: "Document generation"},
		{Path: "/documents", Name: "Documents", View: ViewDocuments, Title: "Documents"},
		{Path: "/documents/:id/edit", Name: "DocumentEdit", View: ViewDocumentEdit, Title: "Edit document"},
		{Path: "/templates", Name: "Templates", View: ViewTemplates, Title: "Templates"},
		{Path: "/audit-logs", Name: "AuditLogs", View: ViewAuditLogs, Title: "Audit logs"},
		{Path: "/system-health", Name: "SystemHealth", View: ViewSystemHealth, Title: "System health"},
		{Path: "/rules-management", Name: "RulesManagement", View: ViewRulesManagement, Title: "Rules management"},
	}

	table := []Route{
		{Path: PathLogin, Name: "Login", View: ViewLogin, Title: "Log in"},
		{Path: PathRegister, Name: "Register", View: ViewRegister, Title: "Register"},
		{Path: PathRoot, Name: "Layout", View: ViewLayout, RequiresAuth: true, Redirect: "/dashboard"},
	}
	for _, c := range children {
		c.RequiresAuth = true
		table = append(table, c)
	}
	return table
}

// Match finds the route for path and extracts its parameters.
// A trailing slash and any query string are ignored.
func Match(path string) (Route, Params, bool) {
	path = normalize(path)
	for _, r := range Table {
		if params, ok := matchPattern(r.Path, path); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

// Lookup returns the route with the given name.
func Lookup(name string) (Route, bool) {
	for _, r := range Table {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Build fills the :name segments of a route pattern.
func Build(pattern string, params Params) string {
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = params[s[1:]]
		}
	}
	return strings.Join(segs, "/")
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func matchPattern(pattern, path string) (Params, bool) {
	if pattern == path && !strings.Contains(pattern, ":") {
		return Params{}, true
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return nil, false
	}
	params := Params{}
	for i, p := range ps {
		if strings.HasPrefix(p, ":") {
			if xs[i] == "" {
				return nil, false
			}
			params[p[1:]] = xs[i]
			continue
		}
		if p != xs[i] {
			return nil, false
		}
	}
	return params, true
}
