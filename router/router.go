// Package router defines the HTTP routing abstraction core/ depends on,
// plus the Chain helper (chain.go) used to compose middleware around a
// route's final handler. Two concrete backends implement Router:
// router/httprouter (the default, wrapping julienschmidt/httprouter) and
// router/servemux (net/http.ServeMux, kept as the alternate).
package router

import (
	"context"
	"net/http"
)

// Router is the minimal routing surface the application needs: register
// chains of handlers, and recover named path parameters from a request.
type Router interface {
	http.Handler
	Handle(path string, handler http.Handler)
	HandleFunc(path string, handler func(http.ResponseWriter, *http.Request))
	Param(r *http.Request, key string) string
	Register(chains Chains)
}

// Param is one named path parameter extracted from a matched route.
type Param struct {
	Key   string
	Value string
}

// Params is the ordered list of named path parameters bound to one request.
type Params []Param

// Get returns the first value bound to key, or "" if absent.
func (p Params) Get(key string) string {
	for _, v := range p {
		if v.Key == key {
			return v.Value
		}
	}
	return ""
}

// ParamGeter extracts named path parameters from a request's context. Each
// router backend supplies its own implementation since the underlying
// context key differs (httprouter.ParamsKey vs net/http's PathValue).
type ParamGeter interface {
	Get(ctx context.Context) Params
}
