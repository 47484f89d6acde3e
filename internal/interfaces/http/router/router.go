// Package router assembles the gin engine of the lookbook API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion is the path segment every API group is mounted under
const APIVersion = "v1"

// RouteGroup is a declarative route table for one area of the API. It is
// built up front and attached to gin by Mount, which keeps the tables
// inspectable in tests.
type RouteGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*RouteGroup
}

type route struct {
	method, path string
	handlers     []gin.HandlerFunc
}

// NewRouteGroup starts an empty table under prefix
func NewRouteGroup(prefix string) *RouteGroup {
	return &RouteGroup{prefix: prefix}
}

// Mount attaches groups to engine under /api/<version>
func Mount(engine *gin.Engine, version string, groups ...*RouteGroup) {
	api := engine.Group("/api/" + version)
	for _, g := range groups {
		g.attach(api)
	}
}

func (g *RouteGroup) attach(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		rg.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range g.children {
		child.attach(rg)
	}
}

// Use wraps every route of g and its children with middleware
func (g *RouteGroup) Use(middleware ...gin.HandlerFunc) *RouteGroup {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// Sub adds a nested table under prefix and returns it
func (g *RouteGroup) Sub(prefix string) *RouteGroup {
	child := NewRouteGroup(prefix)
	g.children = append(g.children, child)
	return child
}

// Handle adds a route and returns g for chaining
func (g *RouteGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *RouteGroup {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *RouteGroup) GET(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodGet, path, h...)
}

func (g *RouteGroup) POST(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPost, path, h...)
}

func (g *RouteGroup) PUT(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPut, path, h...)
}

func (g *RouteGroup) PATCH(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodPatch, path, h...)
}

func (g *RouteGroup) DELETE(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.Handle(http.MethodDelete, path, h...)
}

// Routes lists "METHOD path" for g and its children, paths relative to
// the API root.
func (g *RouteGroup) Routes() []string {
	var out []string
	g.walk("", func(method, path string) { out = append(out, method+" "+path) })
	return out
}

func (g *RouteGroup) walk(base string, visit func(method, path string)) {
	base += g.prefix
	for _, r := range g.routes {
		visit(r.method, base+r.path)
	}
	for _, child := range g.children {
		child.walk(base, visit)
	}
}
