package web

import (
	"fmt"
	"io/fs"
	"net/http"
)

// FileServer serves dir inside fsys under path, which must end in "/".
func (a *WebHandler) FileServer(fsys fs.FS, dir string, path string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("switching to static folder: %w", err)
	}

	fileServer := http.StripPrefix(path, http.FileServer(http.FS(sub)))
	a.mux.Handle(fmt.Sprintf("GET %s", path), fileServer)
	return nil
}

// Page serves a single file from fsys at exactly path.
func (a *WebHandler) Page(fsys fs.FS, name string, path string) error {
	page, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading page %s: %w", name, err)
	}

	a.mux.HandleFunc(fmt.Sprintf("GET %s{$}", path), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(page); err != nil {
			a.log.ErrorContext(r.Context(), "write page", "page", name, "error", err)
		}
	})
	return nil
}
