package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	gossh "golang.org/x/crypto/ssh"

	"courtiq-landing/internal/config"
	"courtiq-landing/internal/logging"
	"courtiq-landing/internal/router"
	"courtiq-landing/internal/signup"
	"courtiq-landing/internal/theme"
	"courtiq-landing/internal/tui"
)

const version = "dev"

// Deps are the collaborators shared by every session.
type Deps struct {
	Prefs    theme.Store
	Notifier signup.Notifier
	Logger   *log.Logger
	Chain    []router.Descriptor
}

// Runtime wires config, middleware and the Wish server as a testable unit.
type Runtime struct {
	cfg           config.Config
	deps          Deps
	logger        *log.Logger
	middlewareIDs []string
	server        *ssh.Server
}

func New(cfg config.Config, deps Deps) (*Runtime, error) {
	logger := logging.Component(deps.Logger, "ssh")
	rt := &Runtime{cfg: cfg, deps: deps, logger: logger}

	if dir := filepath.Dir(cfg.SSHHostKeyPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create host key dir: %w", err)
		}
	}

	// Wish runs the last middleware first, so the execution order is
	// reversed here: request logging, the router chain, the active-terminal
	// guard, and finally the bubbletea program.
	middleware := []wish.Middleware{
		bm.Middleware(rt.teaHandler),
		activeterm.Middleware(),
	}
	chain := router.MiddlewareFromDescriptors(deps.Chain)
	for i := len(chain) - 1; i >= 0; i-- {
		middleware = append(middleware, chain[i])
	}
	middleware = append(middleware, wishlogging.StructuredMiddlewareWithLogger(logger, log.InfoLevel))

	srv, err := wish.NewServer(
		wish.WithAddress(cfg.SSHAddress()),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithIdleTimeout(cfg.SSHIdleTimeout),
		// Anyone may look at the page. Offered keys only key the theme.
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return true }),
		wish.WithKeyboardInteractiveAuth(func(ssh.Context, gossh.KeyboardInteractiveChallenge) bool { return true }),
		wish.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, fmt.Errorf("build ssh server: %w", err)
	}
	rt.server = srv

	ids := make([]string, 0, len(deps.Chain))
	for _, descriptor := range deps.Chain {
		ids = append(ids, descriptor.Name)
	}
	rt.middlewareIDs = ids

	return rt, nil
}

func (r *Runtime) MiddlewareIDs() []string {
	out := make([]string, len(r.middlewareIDs))
	copy(out, r.middlewareIDs)
	return out
}

func (r *Runtime) Address() string {
	return r.server.Addr
}

// Run serves until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = r.server.Shutdown(context.Background())
	}()

	r.logger.Info("startup",
		"version", version,
		"addr", r.server.Addr,
		"middleware", r.middlewareIDs,
		"host_key_path", r.cfg.SSHHostKeyPath,
		"idle_timeout", r.cfg.SSHIdleTimeout,
	)
	err := r.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) || err == nil {
		return nil
	}

	return err
}

func (r *Runtime) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	renderer := bm.MakeRenderer(sess)
	pty, _, _ := sess.Pty()

	opts := r.modelOptions(sess.Context(), sessionIdentity(sess), renderer.HasDarkBackground(), pty.Window)
	opts.Renderer = renderer
	return tui.New(opts), []tea.ProgramOption{tea.WithAltScreen()}
}

// modelOptions resolves the theme for identity: a stored choice wins,
// otherwise the terminal background decides.
func (r *Runtime) modelOptions(ctx context.Context, identity router.Identity, platformDark bool, window ssh.Window) tui.Options {
	mode, err := theme.ResolveStored(ctx, r.deps.Prefs, identity.Subject, platformDark)
	if err != nil {
		r.logger.Warn("theme_load_failed", "subject", identity.Subject, "err", err)
	}

	return tui.Options{
		Context:  ctx,
		Subject:  identity.Subject,
		Mode:     mode,
		Prefs:    r.deps.Prefs,
		Notifier: r.deps.Notifier,
		Logger:   r.logger,
		Width:    window.Width,
		Height:   window.Height,
	}
}

func sessionIdentity(sess ssh.Session) router.Identity {
	if identity, ok := router.IdentityFrom(sess.Context()); ok {
		return identity
	}
	return router.ResolveIdentity(sess.User(), router.RemoteIP(sess.RemoteAddr()), sess.PublicKey())
}
