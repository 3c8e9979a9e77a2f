package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideField = "_method"

var overridableMethods = map[string]bool{
	http.MethodPatch:  true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// MethodOverride lets an HTML form POST stand in for PATCH, PUT or DELETE
// through a hidden "_method" field, so the delete form works without
// scripts. It must run before routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isFormPost(r) {
			m := strings.ToUpper(r.PostFormValue(methodOverrideField))
			if overridableMethods[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
