// Package pipeline authenticates incoming requests. Three stages run in a
// fixed order: password login, access token check and refresh exchange.
package pipeline

import (
	"net/http"

	"github.com/actionprice/auth/pkg/httpx"
)

// Stage is one step of request authentication. It returns the request to
// hand to the next stage, or false once it has written a response itself.
type Stage interface {
	Handle(w http.ResponseWriter, r *http.Request) (*http.Request, bool)
}

type Pipeline struct {
	stages []Stage
}

// New wires the stages in their only valid order.
func New(login *LoginStage, access *AccessCheckStage, refresh *RefreshStage) *Pipeline {
	return &Pipeline{stages: []Stage{login, access, refresh}}
}

func (p *Pipeline) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range p.stages {
				var ok bool
				if r, ok = s.Handle(w, r); !ok {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
