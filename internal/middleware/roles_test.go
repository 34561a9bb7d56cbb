package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"accounting/internal/auth"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"viewer", &auth.Claims{UserID: "u1", Roles: []string{auth.RoleViewer}}, http.StatusForbidden},
		{"accountant", &auth.Claims{UserID: "u1", Roles: []string{auth.RoleViewer, auth.RoleAccountant}}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(auth.RoleAccountant)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			req := httptest.NewRequest(http.MethodPost, "/journal-entries", nil)
			if tc.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), *tc.claims))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
		})
	}
}
