package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/yosssi/gohtml"

	"courtiq-landing/internal/signup"
	"courtiq-landing/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData is everything the landing template reads.
type pageData struct {
	Mode        theme.Mode
	Dark        bool
	Palette     theme.Palette
	LogoPath    string
	Email       string
	Placeholder string
	ButtonLabel string
	Submitting  bool
	Status      signup.Status
	Message     string
	Hint        string
}

func newPageData(mode theme.Mode, form signup.Form, hint string) pageData {
	return pageData{
		Mode:        mode,
		Dark:        mode.IsDark(),
		Palette:     theme.PaletteFor(mode),
		LogoPath:    mode.LogoPath(),
		Email:       form.Email,
		Placeholder: signup.Placeholder,
		ButtonLabel: form.ButtonLabel(),
		Submitting:  form.Submitting(),
		Status:      form.CurrentStatus(),
		Message:     form.Message(),
		Hint:        hint,
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render_failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body := buf.Bytes()
	if h.pretty {
		body = gohtml.FormatBytes(body)
	}

	header := w.Header()
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Length", strconv.Itoa(len(body)))
	advertiseColorScheme(header)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
