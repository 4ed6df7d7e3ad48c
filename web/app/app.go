// Package app embeds the submission site's templates and static assets.
package app

import (
	"embed"
	"net/http"

	"github.com/JaimeStill/scrivener/pkg/routes"
	"github.com/JaimeStill/scrivener/pkg/web"
)

//go:embed templates static
var files embed.FS

// Layout is the name of the template every view renders through.
const Layout = "app"

// Templates parses the embedded layouts and the given views.
func Templates(basePath, version string, views []web.ViewDef) (*web.TemplateSet, error) {
	return web.NewTemplateSet(files, "templates/layouts/*.html", "templates/views", basePath, version, views)
}

// Static serves the embedded static assets under urlPrefix.
func Static(urlPrefix string) http.HandlerFunc {
	return web.DistServer(files, "static", urlPrefix)
}

// PublicRoutes serves root-level files such as robots.txt.
func PublicRoutes() []routes.Route {
	return web.PublicFileRoutes(files, "static", "robots.txt")
}
