// Package httprouter adapts github.com/julienschmidt/httprouter to the
// router.Router interface; it is the default backend (see SPEC_FULL.md §4).
package httprouter

import (
	"context"
	"strings"

	"github.com/caasmo/identityoutbox/router"
	jshttprouter "github.com/julienschmidt/httprouter"
	"net/http"
)

// Router implements router.Router on top of julienschmidt/httprouter.
type Router struct {
	*jshttprouter.Router
}

func New() *Router {
	return &Router{jshttprouter.New()}
}

// Handle registers handler for path under GET only: httprouter requires a
// method per route. (router/servemux's method-less patterns, by contrast,
// match every method.)
func (r *Router) Handle(path string, handler http.Handler) {
	r.Router.Handler(http.MethodGet, path, handler)
}

func (r *Router) HandleFunc(path string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(path, http.HandlerFunc(handler))
}

// Param returns the named path parameter bound to req by the route match.
func (r *Router) Param(req *http.Request, key string) string {
	return jshttprouter.ParamsFromContext(req.Context()).ByName(key)
}

// Register installs every chain in chains, keyed "METHOD /path" (matching
// the key convention chain_test.go/servemux_test.go use); a key with no
// leading method defaults to GET.
func (r *Router) Register(chains router.Chains) {
	for key, chain := range chains {
		method, path, ok := strings.Cut(key, " ")
		if !ok {
			method, path = http.MethodGet, key
		}
		r.Router.Handler(method, path, chain.Handler())
	}
}

// jsParams implements router.ParamGeter against httprouter's context key.
type jsParams struct{}

func (js *jsParams) Get(ctx context.Context) router.Params {
	pms := jshttprouter.ParamsFromContext(ctx)

	var params router.Params
	for _, v := range pms {
		params = append(params, router.Param{Key: v.Key, Value: v.Value})
	}
	return params
}

func NewParamGeter() router.ParamGeter {
	return &jsParams{}
}
