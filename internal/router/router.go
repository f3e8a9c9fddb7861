// Package router generates conventional REST routes for viewsets and mounts
// them on a gin router group.
//
// Registering prefix "users" with basename "users" produces:
//
//	GET    /users/       list            users-list
//	POST   /users/       create          users-list
//	GET    /users/:id/   retrieve        users-detail
//	PUT    /users/:id/   update          users-detail
//	PATCH  /users/:id/   partial_update  users-detail
//	DELETE /users/:id/   destroy         users-detail
//
// plus one route per extra action, and an API root view at the mount point.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RootName is the route name of the API root view.
const RootName = "api-root"

var (
	// ErrInvalidPrefix is returned when a prefix is empty after trimming slashes.
	ErrInvalidPrefix = errors.New("router: prefix is required")
	// ErrDuplicateBasename is returned when a basename is registered twice in one namespace.
	ErrDuplicateBasename = errors.New("router: basename already registered")
	// ErrNoActions is returned when a viewset implements no action at all.
	ErrNoActions = errors.New("router: viewset has no actions")
	// ErrInvalidAction is returned for malformed extra actions.
	ErrInvalidAction = errors.New("router: invalid extra action")
	// ErrMounted is returned when registering on a router that is already mounted.
	ErrMounted = errors.New("router: already mounted")
	// ErrNoReverseMatch is returned by Reverse for unknown names or wrong argument counts.
	ErrNoReverseMatch = errors.New("router: no reverse match")
)

// URLPattern is one generated method/path binding.
// Path is relative to the mount point and uses gin ":param" placeholders.
type URLPattern struct {
	Method  string
	Path    string
	Action  string
	Name    string
	handler gin.HandlerFunc
}

type registration struct {
	namespace string
	prefix    string
	basename  string
}

// Router collects viewset registrations and the URL patterns generated for them.
// Register everything before Mount; after Mount the router is read-only.
type Router struct {
	trailingSlash bool
	rootView      bool

	registry  []registration
	basenames map[string]struct{}
	patterns  []URLPattern
	names     map[string]string

	basePath string
	mounted  bool
}

// Option configures a Router.
type Option func(*Router)

// WithTrailingSlash controls whether generated paths end with "/". Default true.
func WithTrailingSlash(enabled bool) Option {
	return func(r *Router) { r.trailingSlash = enabled }
}

// WithRootView controls whether an API root view is served at the mount point. Default true.
func WithRootView(enabled bool) Option {
	return func(r *Router) { r.rootView = enabled }
}

// New creates a Router.
func New(opts ...Option) *Router {
	r := &Router{
		trailingSlash: true,
		rootView:      true,
		basenames:     make(map[string]struct{}),
		names:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rootView {
		r.names[RootName] = "/"
	}
	return r
}

// Registrar registers viewsets under an application namespace.
type Registrar struct {
	router    *Router
	namespace string
}

// Namespace returns a Registrar whose route names are qualified as "<name>:<route>".
func (r *Router) Namespace(name string) *Registrar {
	return &Registrar{router: r, namespace: strings.TrimSpace(name)}
}

// Register binds prefix to viewset without a namespace.
func (r *Router) Register(prefix string, viewset any, basename string) error {
	return r.Namespace("").Register(prefix, viewset, basename)
}

// Register binds prefix to viewset. An empty basename defaults to the last
// segment of the prefix.
func (g *Registrar) Register(prefix string, viewset any, basename string) error {
	r := g.router
	if r.mounted {
		return ErrMounted
	}

	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ErrInvalidPrefix
	}
	basename = strings.TrimSpace(basename)
	if basename == "" {
		basename = prefix[strings.LastIndex(prefix, "/")+1:]
	}

	key := qualify(g.namespace, basename)
	if _, exists := r.basenames[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateBasename, key)
	}

	patterns, err := r.buildPatterns(g.namespace, prefix, basename, viewset)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		return fmt.Errorf("%w: %T", ErrNoActions, viewset)
	}

	r.basenames[key] = struct{}{}
	r.registry = append(r.registry, registration{namespace: g.namespace, prefix: prefix, basename: basename})
	for _, p := range patterns {
		r.patterns = append(r.patterns, p)
		r.names[p.Name] = p.Path
	}
	return nil
}

// buildPatterns generates routes in a fixed order: collection route, extra
// collection actions, detail route, extra detail actions.
func (r *Router) buildPatterns(namespace, prefix, basename string, viewset any) ([]URLPattern, error) {
	lookup := ":" + lookupField(viewset)
	actions := extraActions(viewset)
	for _, a := range actions {
		if err := validateAction(a); err != nil {
			return nil, err
		}
	}

	var out []URLPattern
	add := func(path, name string, bindings []binding) {
		for _, b := range bindings {
			out = append(out, URLPattern{
				Method:  b.method,
				Path:    r.path(path),
				Action:  b.action,
				Name:    qualify(namespace, name),
				handler: b.handler,
			})
		}
	}

	add(prefix, basename+"-list", collectionBindings(viewset))
	for _, a := range actions {
		if !a.Detail {
			add(prefix+"/"+a.URLPath, basename+"-"+a.URLName, actionBindings(a))
		}
	}
	add(prefix+"/"+lookup, basename+"-detail", detailBindings(viewset))
	for _, a := range actions {
		if a.Detail {
			add(prefix+"/"+lookup+"/"+a.URLPath, basename+"-"+a.URLName, actionBindings(a))
		}
	}
	if err := r.checkConflicts(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkConflicts rejects patterns whose name already reverses to another path
// or whose method and path are already routed.
func (r *Router) checkConflicts(patterns []URLPattern) error {
	names := make(map[string]string, len(patterns))
	routes := make(map[string]struct{}, len(patterns))
	for _, p := range r.patterns {
		routes[p.Method+" "+p.Path] = struct{}{}
	}
	for _, p := range patterns {
		prev, ok := names[p.Name]
		if !ok {
			prev, ok = r.names[p.Name]
		}
		if ok && prev != p.Path {
			return fmt.Errorf("%w: name %q already reverses to %s", ErrInvalidAction, p.Name, prev)
		}
		names[p.Name] = p.Path

		route := p.Method + " " + p.Path
		if _, dup := routes[route]; dup {
			return fmt.Errorf("%w: %s is already routed", ErrInvalidAction, route)
		}
		routes[route] = struct{}{}
	}
	return nil
}

func actionBindings(a Action) []binding {
	b := make([]binding, 0, len(a.Methods))
	for _, m := range a.Methods {
		b = append(b, binding{method: m, action: a.Name, handler: a.Handler})
	}
	return b
}

func validateAction(a Action) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAction)
	}
	if a.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidAction, a.Name)
	}
	if a.URLPath == "" || strings.ContainsAny(a.URLPath, ":*") {
		return fmt.Errorf("%w: %q has invalid url path %q", ErrInvalidAction, a.Name, a.URLPath)
	}
	for _, m := range a.Methods {
		if !validMethods[m] {
			return fmt.Errorf("%w: %q has unsupported method %q", ErrInvalidAction, a.Name, m)
		}
	}
	return nil
}

func (r *Router) path(p string) string {
	p = "/" + strings.Trim(p, "/")
	if r.trailingSlash {
		p += "/"
	}
	return p
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + ":" + name
}

// URLs returns the generated URL patterns in registration order, preceded by
// the root view when enabled.
func (r *Router) URLs() []URLPattern {
	out := make([]URLPattern, 0, len(r.patterns)+1)
	if r.rootView {
		out = append(out, URLPattern{
			Method:  http.MethodGet,
			Path:    "/",
			Action:  "root",
			Name:    RootName,
			handler: r.serveRoot,
		})
	}
	return append(out, r.patterns...)
}

// Mount binds every URL pattern to group. GET routes also answer HEAD.
// Mount must be called once; gin panics on duplicate routes.
func (r *Router) Mount(group *gin.RouterGroup) {
	r.basePath = strings.TrimSuffix(group.BasePath(), "/")
	r.mounted = true

	for _, p := range r.URLs() {
		group.Handle(p.Method, p.Path, p.handler)
		if p.Method == http.MethodGet {
			group.Handle(http.MethodHead, p.Path, p.handler)
		}
	}
}

// BasePath returns the mount point recorded by Mount.
func (r *Router) BasePath() string {
	return r.basePath
}
