package middleware

import (
	"net/http"
	"strings"

	"github.com/rhoodstudio/studio-backend/api/responses"
)

// FlatErrors answers failures on the listed paths with responses.FlatError and
// the path's status overrides. Mount it ahead of Auth so credential and
// throttling rejections on those paths share the shape.
func FlatErrors(paths map[string]responses.StatusOverrides) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if len(path) > 1 {
				path = strings.TrimSuffix(path, "/")
			}
			if overrides, ok := paths[path]; ok {
				r = r.WithContext(responses.WithFlatErrors(r.Context(), overrides))
			}
			next.ServeHTTP(w, r)
		})
	}
}
