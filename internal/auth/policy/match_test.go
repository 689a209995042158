package policy_test

import (
	"testing"

	"github.com/actionprice/auth/internal/auth/policy"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/user/login", "/api/user/login", true},
		{"/api/user/login", "/api/user/login/", true},
		{"/api/user/login", "/api/user/logout", false},
		{"/api/user/*", "/api/user/me", true},
		{"/api/user/*", "/api/user/me/x", false},
		{"/api/user/**", "/api/user", true},
		{"/api/user/**", "/api/user/generate/refreshToken", true},
		{"/api/post/*/detail", "/api/post/42/detail", true},
		{"/api/post/*/detail", "/api/post/42/detail/7", false},
		{"/api/post/*/detail/**", "/api/post/42/detail/7/edit", true},
		{"/api/post/*/comment/admin/**", "/api/post/1/comment/admin/9", true},
		{"/api/category/*/*/*/*/favorite", "/api/category/a/b/c/d/favorite", true},
		{"/api/category/*/*/*/*/favorite", "/api/category/a/b/c/favorite", false},
		{"/**/favorite", "/api/category/favorite", true},
		{"/api/*.json", "/api/doc.json", true},
		{"/swagger/**", "/swagger/index.html", true},
		{"/", "/", true},
		{"/", "/api", false},
		{"/api/[", "/api/[", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, policy.Match(tc.pattern, tc.path), "%s ~ %s", tc.pattern, tc.path)
	}
}
