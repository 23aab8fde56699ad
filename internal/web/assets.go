package web

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

//go:embed static
var staticFS embed.FS

type asset struct {
	name        string
	contentType string
	body        []byte
}

// loadAssets reads every embedded static file and sniffs its type once.
func loadAssets() (map[string]asset, error) {
	out := map[string]asset{}
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := staticFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", p, err)
		}
		name := path.Base(p)
		out["/"+name] = asset{
			name:        name,
			contentType: mimetype.Detect(body).String(),
			body:        body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Handler) serveAsset(a asset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", a.contentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, a.name, time.Time{}, bytes.NewReader(a.body))
	}
}
