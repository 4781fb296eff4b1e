package main

import (
	"net/http"
	"strings"

	"rolinks/utils"
)

// NotFound answers unmatched API routes in JSON
type NotFound struct{}

func (NotFound) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	utils.ErrorJSON(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers matched API routes hit with the wrong verb
type MethodNotAllowed struct{}

func (MethodNotAllowed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	utils.ErrorJSON(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// staticFileSystem serves the exported frontend. Extensionless paths fall
// back to their .html file and directories to their index so page URLs stay
// clean
type staticFileSystem struct {
	http.FileSystem
}

func (fs staticFileSystem) Open(name string) (http.File, error) {
	if !strings.Contains(name, ".") {
		if strings.HasSuffix(name, "/") {
			name += "index.html"
		} else if name != "/" {
			if file, err := fs.FileSystem.Open(name); err == nil {
				if fi, err := file.Stat(); err == nil && fi.IsDir() {
					_ = file.Close()
					name += "/index.html"
				} else {
					return file, err
				}
			} else {
				name += ".html"
			}
		}
	}
	return fs.FileSystem.Open(name)
}
