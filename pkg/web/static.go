package web

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/JaimeStill/scrivener/pkg/routes"
)

// assetMaxAge is the Cache-Control max-age sent with static assets.
const assetMaxAge = "public, max-age=3600"

// DistServer serves the files under subdir of fsys at urlPrefix. Directory
// listings are not served.
func DistServer(fsys fs.FS, subdir, urlPrefix string) http.HandlerFunc {
	sub, err := fs.Sub(fsys, subdir)
	if err != nil {
		panic("failed to create sub-filesystem: " + err.Error())
	}
	files := http.StripPrefix(urlPrefix, http.FileServer(http.FS(sub)))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == urlPrefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", assetMaxAge)
		files.ServeHTTP(w, r)
	}
}

// PublicFile serves subdir/filename from fsys. The file is read once, when
// the handler is built; a missing file yields 404 for every request.
func PublicFile(fsys fs.FS, subdir, filename string) http.HandlerFunc {
	data, err := fs.ReadFile(fsys, path.Join(subdir, filename))
	if err != nil {
		return http.NotFound
	}
	loaded := time.Now()

	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, filename, loaded, bytes.NewReader(data))
	}
}

// PublicFileRoutes generates GET routes serving each file at the site root.
func PublicFileRoutes(fsys fs.FS, subdir string, files ...string) []routes.Route {
	routeList := make([]routes.Route, len(files))
	for i, file := range files {
		routeList[i] = routes.Route{
			Method:  "GET",
			Pattern: "/" + file,
			Handler: PublicFile(fsys, subdir, file),
		}
	}
	return routeList
}
