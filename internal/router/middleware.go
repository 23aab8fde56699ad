package router

import (
	"context"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	gossh "golang.org/x/crypto/ssh"

	"courtiq-landing/internal/ratelimit"
)

type contextKey string

const sessionIdentityKey contextKey = "identity"

// Descriptor names one middleware so the startup log shows the chain.
type Descriptor struct {
	Name       string
	Middleware wish.Middleware
}

// Identity is who a session belongs to, for preference keying only.
type Identity struct {
	// Subject keys the stored theme: the key fingerprint when a key was
	// offered, otherwise user@remote-ip.
	Subject        string
	Username       string
	RemoteIP       string
	KeyFingerprint string
}

// DefaultChain wires the session middleware in execution order:
// rate limiting, then identity resolution.
func DefaultChain(limiter *ratelimit.Limiter, logger *log.Logger) []Descriptor {
	return []Descriptor{
		{Name: "rate-limit", Middleware: RateLimitMiddleware(limiter, logger)},
		{Name: "identity", Middleware: identityResolution()},
	}
}

// MiddlewareFromDescriptors returns the middleware in execution order; the
// first element is outermost.
func MiddlewareFromDescriptors(chain []Descriptor) []wish.Middleware {
	out := make([]wish.Middleware, 0, len(chain))
	for _, d := range chain {
		out = append(out, d.Middleware)
	}
	return out
}

// RateLimitMiddleware enforces per-IP session limits using limiter.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *log.Logger) wish.Middleware {
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			ip := RemoteIP(s.RemoteAddr())
			if !limiter.Allow(ip) {
				if logger != nil {
					logger.Warn("rate_limit_throttled", "surface", "ssh", "remote_ip", ip, "timestamp", time.Now().UTC().Format(time.RFC3339))
				}
				_, _ = s.Write([]byte("rate limit exceeded\n"))
				return
			}
			next(s)
		}
	}
}

func identityResolution() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			identity := ResolveIdentity(s.User(), RemoteIP(s.RemoteAddr()), s.PublicKey())
			s.Context().SetValue(sessionIdentityKey, identity)
			next(s)
		}
	}
}

// ResolveIdentity derives the preference subject for a session.
func ResolveIdentity(user, remoteIP string, key ssh.PublicKey) Identity {
	identity := Identity{Username: user, RemoteIP: remoteIP}
	if key != nil {
		identity.KeyFingerprint = gossh.FingerprintSHA256(key)
		identity.Subject = identity.KeyFingerprint
		return identity
	}
	identity.Subject = user + "@" + remoteIP
	return identity
}

// IdentityFrom returns the identity stored by the identity middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(sessionIdentityKey).(Identity)
	return identity, ok
}

// RemoteIP strips the port from addr, falling back to "unknown".
func RemoteIP(remote net.Addr) string {
	if remote == nil {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		return remote.String()
	}

	if host == "" {
		return "unknown"
	}
	return host
}
