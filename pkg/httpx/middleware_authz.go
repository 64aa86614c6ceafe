package httpx

import "net/http"

// RequireRole allows the request through only when the authenticated caller
// holds one of the listed roles. The role claim is fixed at sign-in, so this
// is a capability check rather than a per-request database lookup.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromCtx(r.Context())
			if _, ok := want[role]; !ok {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "permission_denied",
					"error_description": "caller role is not permitted to perform this action",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
