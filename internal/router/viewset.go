package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// A viewset is any value that implements one or more of the action interfaces
// below. The router binds only the actions a viewset actually provides.

// Lister handles GET on the collection route.
type Lister interface {
	List(c *gin.Context)
}

// Creator handles POST on the collection route.
type Creator interface {
	Create(c *gin.Context)
}

// Retriever handles GET on the detail route.
type Retriever interface {
	Retrieve(c *gin.Context)
}

// Updater handles PUT on the detail route.
type Updater interface {
	Update(c *gin.Context)
}

// PartialUpdater handles PATCH on the detail route.
type PartialUpdater interface {
	PartialUpdate(c *gin.Context)
}

// Destroyer handles DELETE on the detail route.
type Destroyer interface {
	Destroy(c *gin.Context)
}

// LookupFielder overrides the name of the detail route parameter. The default is "id".
type LookupFielder interface {
	LookupField() string
}

// ExtraActioner exposes additional routes beyond the standard CRUD actions.
type ExtraActioner interface {
	ExtraActions() []Action
}

// Action describes an extra route on a viewset.
//
// URLPath defaults to Name, URLName defaults to Name with underscores replaced
// by dashes, and Methods defaults to GET. Detail actions are mounted below the
// detail route, the others below the collection route.
type Action struct {
	Name    string
	URLPath string
	URLName string
	Detail  bool
	Methods []string
	Handler gin.HandlerFunc
}

func (a Action) normalized() Action {
	if a.URLPath == "" {
		a.URLPath = a.Name
	}
	a.URLPath = strings.Trim(a.URLPath, "/")
	if a.URLName == "" {
		a.URLName = strings.ReplaceAll(a.Name, "_", "-")
	}
	if len(a.Methods) == 0 {
		a.Methods = []string{http.MethodGet}
	}
	methods := make([]string, len(a.Methods))
	for i, m := range a.Methods {
		methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	a.Methods = methods
	return a
}

type binding struct {
	method  string
	action  string
	handler gin.HandlerFunc
}

// collectionBindings returns the actions a viewset provides on the collection route.
func collectionBindings(vs any) []binding {
	var b []binding
	if v, ok := vs.(Lister); ok {
		b = append(b, binding{http.MethodGet, "list", v.List})
	}
	if v, ok := vs.(Creator); ok {
		b = append(b, binding{http.MethodPost, "create", v.Create})
	}
	return b
}

// detailBindings returns the actions a viewset provides on the detail route.
func detailBindings(vs any) []binding {
	var b []binding
	if v, ok := vs.(Retriever); ok {
		b = append(b, binding{http.MethodGet, "retrieve", v.Retrieve})
	}
	if v, ok := vs.(Updater); ok {
		b = append(b, binding{http.MethodPut, "update", v.Update})
	}
	if v, ok := vs.(PartialUpdater); ok {
		b = append(b, binding{http.MethodPatch, "partial_update", v.PartialUpdate})
	}
	if v, ok := vs.(Destroyer); ok {
		b = append(b, binding{http.MethodDelete, "destroy", v.Destroy})
	}
	return b
}

func lookupField(vs any) string {
	if v, ok := vs.(LookupFielder); ok {
		if f := strings.TrimSpace(v.LookupField()); f != "" {
			return f
		}
	}
	return "id"
}

func extraActions(vs any) []Action {
	v, ok := vs.(ExtraActioner)
	if !ok {
		return nil
	}
	actions := v.ExtraActions()
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.normalized())
	}
	return out
}

var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}
