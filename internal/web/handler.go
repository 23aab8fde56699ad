package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"courtiq-landing/internal/logging"
	"courtiq-landing/internal/ratelimit"
	"courtiq-landing/internal/signup"
	"courtiq-landing/internal/theme"
)

const (
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
	themeCookieAge  = 365 * 24 * time.Hour
)

// Options configures a Handler.
type Options struct {
	Notifier signup.Notifier
	Limiter  *ratelimit.Limiter
	Logger   *log.Logger
	// Pretty re-indents rendered HTML.
	Pretty bool
}

type Handler struct {
	notifier signup.Notifier
	limiter  *ratelimit.Limiter
	logger   *log.Logger
	pretty   bool
	assets   map[string]asset
}

func NewHandler(opts Options) (*Handler, error) {
	if opts.Notifier == nil {
		return nil, errors.New("web: notifier is required")
	}
	assets, err := loadAssets()
	if err != nil {
		return nil, err
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	return &Handler{
		notifier: opts.Notifier,
		limiter:  limiter,
		logger:   logging.Component(opts.Logger, "http"),
		pretty:   opts.Pretty,
		assets:   assets,
	}, nil
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("POST /theme", h.toggleTheme)
	mux.HandleFunc("POST /signup", h.submitForm)
	mux.HandleFunc("POST /api/signup", h.submitJSON)
	mux.HandleFunc("GET /healthz", h.healthz)
	for route, a := range h.assets {
		mux.HandleFunc("GET "+route, h.serveAsset(a))
	}
	return withRequestID(instrumentRequests(h.logger, withBrotli(mux)))
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPageData(requestMode(r), signup.Form{}, ""))
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	next := requestMode(r).Toggle()
	http.SetCookie(w, &http.Cookie{
		Name:     theme.CookieName,
		Value:    next.String(),
		Path:     "/",
		MaxAge:   int(themeCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	mode := requestMode(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxSignupBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.logRejection(r, "signup", "bad_form", err.Error())
		h.renderPage(w, http.StatusBadRequest, newPageData(mode, signup.Form{}, signup.MessageInvalid))
		return
	}

	form := signup.Form{Email: r.PostForm.Get("email")}
	if !h.limiter.Allow(clientIP(r)) {
		h.logRejection(r, "signup", "rate_limited", "")
		form.Finish(errRateLimited)
		h.renderPage(w, http.StatusTooManyRequests, newPageData(mode, form, ""))
		return
	}

	err := form.Submit(r.Context(), h.notifier)
	switch {
	case err == nil:
		h.logger.Info("signup_succeeded", "surface", "web", "request_id", RequestIDFrom(r.Context()))
		h.renderPage(w, http.StatusOK, newPageData(mode, form, ""))
	case errors.Is(err, signup.ErrInvalidEmail):
		h.logRejection(r, "signup", "invalid_email", "")
		h.renderPage(w, http.StatusUnprocessableEntity, newPageData(mode, form, signup.MessageInvalid))
	default:
		h.logger.Warn("signup_failed", "surface", "web", "request_id", RequestIDFrom(r.Context()), "err", err)
		h.renderPage(w, http.StatusBadGateway, newPageData(mode, form, ""))
	}
}

func (h *Handler) submitJSON(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientIP(r)) {
		h.logRejection(r, "api_signup", "rate_limited", "")
		writeErr(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSONBody(w, r, maxSignupBodyBytes, &req); err != nil {
		h.logRejection(r, "api_signup", "bad_json", err.Error())
		return
	}

	form := signup.Form{Email: req.Email}
	if err := form.Submit(r.Context(), h.notifier); err != nil {
		h.logRejection(r, "api_signup", "submit_failed", err.Error())
		writeMappedErr(w, err)
		return
	}

	h.logger.Info("signup_succeeded", "surface", "api", "request_id", RequestIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"status": string(signup.StatusSuccess), "message": signup.MessageSuccess})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var errRateLimited = errors.New("rate limited")

func writeMappedErr(w http.ResponseWriter, err error) {
	if errors.Is(err, signup.ErrInvalidEmail) {
		writeErr(w, http.StatusUnprocessableEntity, "INVALID_EMAIL", signup.MessageInvalid)
		return
	}
	if errors.Is(err, signup.ErrInFlight) {
		writeErr(w, http.StatusConflict, "SUBMISSION_IN_FLIGHT", "a submission is already in progress")
		return
	}
	var friendly *signup.FriendlyError
	if errors.As(err, &friendly) {
		writeErr(w, http.StatusBadGateway, friendly.Code, friendly.Message)
		return
	}
	writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", signup.MessageError)
}

// requestMode applies the resolution rule to the theme cookie and the
// client's color-scheme hint.
func requestMode(r *http.Request) theme.Mode {
	stored := ""
	if c, err := r.Cookie(theme.CookieName); err == nil {
		stored = c.Value
	}
	return theme.Resolve(stored, platformPrefersDark(r))
}

func platformPrefersDark(r *http.Request) bool {
	hint := strings.Trim(strings.TrimSpace(r.Header.Get(colorSchemeHint)), `"`)
	return strings.EqualFold(hint, "dark")
}

func advertiseColorScheme(h http.Header) {
	h.Set("Accept-CH", colorSchemeHint)
	h.Set("Critical-CH", colorSchemeHint)
	h.Add("Vary", colorSchemeHint)
	h.Add("Vary", "Cookie")
}
