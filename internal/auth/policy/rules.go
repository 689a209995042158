package policy

import (
	"net/http"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/pkg/authsdk"
)

// DefaultRules covers this service's endpoints and the routes of the
// application it fronts.
func DefaultRules() []Rule {
	admin := HasRole(domain.RoleAdmin)

	return []Rule{
		{Pattern: "/api/admin/**", Require: admin},
		{Pattern: "/api/post/*/comment/admin/**", Require: admin},

		{Pattern: "/api/user/goLogin", Require: AnonymousOnly},
		{Pattern: authsdk.PathLogin, Require: AnonymousOnly},

		{Pattern: authsdk.PathLogout, Require: Authenticated},
		{Pattern: authsdk.PathMe, Require: Authenticated},
		{Pattern: authsdk.PathReissue, Require: Authenticated},

		// Reads are public; everything else under /api/post needs a login.
		{Method: http.MethodGet, Pattern: "/api/post/list", Require: PermitAll},
		{Method: http.MethodGet, Pattern: "/api/post/*/detail", Require: PermitAll},
		{Method: http.MethodGet, Pattern: "/api/post/comments", Require: PermitAll},
		{Pattern: "/api/post/**", Require: Authenticated},
		{Pattern: "/api/mypage/**", Require: Authenticated},
		{Pattern: "/api/category/favorite/**", Require: Authenticated},
		{Pattern: "/api/category/*/*/*/*/favorite", Require: Authenticated},

		{Pattern: "/api/user/**", Require: PermitAll},
		{Pattern: "/api/category/**", Require: PermitAll},
		{Pattern: "/", Require: PermitAll},
		{Pattern: authsdk.PathLivez, Require: PermitAll},
		{Pattern: authsdk.PathReadyz, Require: PermitAll},
		{Pattern: authsdk.PathMetrics, Require: PermitAll},
		{Pattern: authsdk.PathSwagger + "**", Require: PermitAll},
	}
}
