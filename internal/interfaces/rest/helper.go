package rest

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

type endpoint struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	groups      []*apiGroup
}

type apiGroup struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	routes      []*route
}

type route struct {
	method      string
	path        string
	handler     echo.HandlerFunc
	middlewares []echo.MiddlewareFunc
}

// createEndpoint registers every route of def.
//
// Middlewares are attached per route rather than per echo.Group, since a
// group with middlewares catches every unmatched path under its prefix and
// would turn 405 into 404.
func createEndpoint(app *echo.Echo, def *endpoint) {
	type RESTMethod func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

	root := app.Group(normalizePrefix(def.prefix))
	for _, group := range def.groups {
		echoGroup := root.Group(group.prefix)
		for _, api := range group.routes {
			var method RESTMethod
			switch api.method {
			case "GET":
				method = echoGroup.GET
			case "POST":
				method = echoGroup.POST
			case "PUT":
				method = echoGroup.PUT
			case "DELETE":
				method = echoGroup.DELETE
			case "HEAD":
				method = echoGroup.HEAD
			default:
				panic(fmt.Errorf("createEndpoint: unknown method %s", api.method))
			}

			var middlewares []echo.MiddlewareFunc
			middlewares = append(middlewares, def.middlewares...)
			middlewares = append(middlewares, group.middlewares...)
			middlewares = append(middlewares, api.middlewares...)
			method(api.path, api.handler, middlewares...)
		}
	}
}

// normalizePrefix turns "api/v1/" into "/api/v1", an empty prefix mounts at root
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
