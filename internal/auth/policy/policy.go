// Package policy decides whether an authenticated (or anonymous) caller may
// reach a path. Rules are checked in order and the first match wins.
package policy

import (
	"context"
	"net/http"

	"github.com/actionprice/auth/internal/auth/pipeline"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/httpx"
)

// Requirement returns nil when the caller in ctx may proceed.
type Requirement func(ctx context.Context) error

// Rule applies Require to requests whose path matches Pattern. An empty
// Method matches every method.
type Rule struct {
	Method  string
	Pattern string
	Require Requirement
}

func PermitAll(context.Context) error { return nil }

// AnonymousOnly rejects callers that are already authenticated.
func AnonymousOnly(ctx context.Context) error {
	if _, ok := pipeline.AuthFromContext(ctx); ok {
		return service.ErrForbidden
	}
	return nil
}

// Authenticated requires a resolved caller. Anonymous callers get the reason
// their token was refused, or a missing token error.
func Authenticated(ctx context.Context) error {
	if _, ok := pipeline.AuthFromContext(ctx); ok {
		return nil
	}
	if err := pipeline.AuthErrorFromContext(ctx); err != nil {
		return err
	}
	return service.ErrMissingOrWrongScheme
}

func HasRole(role string) Requirement {
	return func(ctx context.Context) error {
		if err := Authenticated(ctx); err != nil {
			return err
		}
		if a, _ := pipeline.AuthFromContext(ctx); !a.HasRole(role) {
			return service.ErrForbidden
		}
		return nil
	}
}

type Policy struct {
	rules    []Rule
	fallback Requirement
}

func New(fallback Requirement, rules ...Rule) *Policy {
	return &Policy{rules: rules, fallback: fallback}
}

// Default is the service's own rule table with Authenticated as fallback.
func Default() *Policy {
	return New(Authenticated, DefaultRules()...)
}

// RequirementFor returns the requirement of the first matching rule.
func (p *Policy) RequirementFor(method, urlPath string) Requirement {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if Match(rule.Pattern, urlPath) {
			return rule.Require
		}
	}
	return p.fallback
}

// Middleware enforces the policy. It must run after the authentication
// pipeline.
func (p *Policy) Middleware(errs *pipeline.ErrorTranslator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := p.RequirementFor(r.Method, r.URL.Path)(r.Context()); err != nil {
				errs.Write(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
