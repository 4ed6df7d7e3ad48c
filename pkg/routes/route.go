package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler. Pattern follows
// http.ServeMux syntax, so "/{$}" matches only the prefix root.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (r Route) under(prefix string) string {
	if r.Method == "" {
		return prefix + r.Pattern
	}
	return r.Method + " " + prefix + r.Pattern
}
