package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// assetServer serves the embedded wasm bundle. Directory listings are not
// exposed and the wasm binary gets its registered MIME type so browsers can
// compile it while streaming.
type assetServer struct {
	fileServer http.Handler
	fileSystem fs.FS
}

func newAssetServer(fsys fs.FS) *assetServer {
	return &assetServer{
		fileServer: http.FileServer(http.FS(fsys)),
		fileSystem: fsys,
	}
}

func (s *assetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		http.NotFound(w, r)
		return
	}

	info, err := fs.Stat(s.fileSystem, name)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if path.Ext(name) == ".wasm" {
		w.Header().Set("Content-Type", "application/wasm")
	}
	w.Header().Set("Cache-Control", "no-cache")
	s.fileServer.ServeHTTP(w, r)
}
