package router

import (
	"context"
	"crypto/ed25519"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"

	"courtiq-landing/internal/ratelimit"
)

type fakeContext struct {
	context.Context
	mu     sync.Mutex
	values map[any]any
}

func newFakeContext() *fakeContext {
	return &fakeContext{Context: context.Background(), values: map[any]any{}}
}

func (f *fakeContext) Lock()                         { f.mu.Lock() }
func (f *fakeContext) Unlock()                       { f.mu.Unlock() }
func (f *fakeContext) User() string                  { return "guest" }
func (f *fakeContext) SessionID() string             { return "session-router" }
func (f *fakeContext) ClientVersion() string         { return "ssh-test-client" }
func (f *fakeContext) ServerVersion() string         { return "ssh-test-server" }
func (f *fakeContext) RemoteAddr() net.Addr          { return nil }
func (f *fakeContext) LocalAddr() net.Addr           { return nil }
func (f *fakeContext) Permissions() *ssh.Permissions { return &ssh.Permissions{} }
func (f *fakeContext) SetValue(key, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}
func (f *fakeContext) Value(key interface{}) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v
	}
	return f.Context.Value(key)
}

type fakeSession struct {
	ssh.Session
	user   string
	remote net.Addr
	key    ssh.PublicKey
	ctx    *fakeContext
	writes []string
}

func newFakeSession(user, ip string) *fakeSession {
	return &fakeSession{
		user:   user,
		remote: &net.TCPAddr{IP: net.ParseIP(ip), Port: 50022},
		ctx:    newFakeContext(),
	}
}

func (f *fakeSession) User() string             { return f.user }
func (f *fakeSession) RemoteAddr() net.Addr     { return f.remote }
func (f *fakeSession) PublicKey() ssh.PublicKey { return f.key }
func (f *fakeSession) Context() ssh.Context     { return f.ctx }
func (f *fakeSession) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func testPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	pub := ed25519.NewKeyFromSeed(seed).Public()
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("NewPublicKey() error = %v", err)
	}
	return key
}

func chainHandler(chain []Descriptor, inner ssh.Handler) ssh.Handler {
	middleware := MiddlewareFromDescriptors(chain)
	h := inner
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func TestDefaultChainOrder(t *testing.T) {
	chain := DefaultChain(ratelimit.New(60, 5), nil)
	want := []string{"rate-limit", "identity"}
	if len(chain) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(chain), len(want))
	}
	for i := range want {
		if chain[i].Name != want[i] {
			t.Fatalf("chain[%d] = %q, want %q", i, chain[i].Name, want[i])
		}
	}
}

func TestDefaultChainSetsIdentityBeforeHandler(t *testing.T) {
	s := newFakeSession("guest", "203.0.113.10")
	called := false

	h := chainHandler(DefaultChain(ratelimit.New(60, 5), nil), func(sess ssh.Session) {
		called = true
		identity, ok := IdentityFrom(sess.Context())
		if !ok {
			t.Fatalf("expected identity before handler execution")
		}
		if identity.Subject != "guest@203.0.113.10" {
			t.Fatalf("Subject = %q", identity.Subject)
		}
	})
	h(s)

	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestResolveIdentityPrefersKeyFingerprint(t *testing.T) {
	key := testPublicKey(t)
	identity := ResolveIdentity("guest", "203.0.113.10", key)

	if !strings.HasPrefix(identity.Subject, "SHA256:") {
		t.Fatalf("Subject = %q, want SHA256 fingerprint", identity.Subject)
	}
	if identity.Subject != identity.KeyFingerprint {
		t.Fatalf("Subject %q != fingerprint %q", identity.Subject, identity.KeyFingerprint)
	}

	again := ResolveIdentity("someone-else", "198.51.100.1", key)
	if again.Subject != identity.Subject {
		t.Fatal("same key from another user/address should map to the same subject")
	}
}

func TestRateLimitMiddlewareThrottlesByIP(t *testing.T) {
	called := 0
	h := RateLimitMiddleware(ratelimit.New(60, 2), nil)(func(ssh.Session) { called++ })

	s := newFakeSession("guest", "203.0.113.10")
	h(s)
	h(s)
	h(s)

	if called != 2 {
		t.Fatalf("handler calls = %d, want 2", called)
	}
	if len(s.writes) != 1 || s.writes[0] != "rate limit exceeded\n" {
		t.Fatalf("writes = %#v", s.writes)
	}
}

func TestRateLimitMiddlewareIsolatedPerIP(t *testing.T) {
	called := 0
	h := RateLimitMiddleware(ratelimit.New(60, 1), nil)(func(ssh.Session) { called++ })

	a := newFakeSession("guest", "203.0.113.10")
	b := newFakeSession("guest", "203.0.113.11")
	h(a)
	h(a)
	h(b)

	if called != 2 {
		t.Fatalf("handler calls = %d, want 2", called)
	}
	if len(a.writes) != 1 || len(b.writes) != 0 {
		t.Fatalf("writes a=%#v b=%#v", a.writes, b.writes)
	}
}

func TestRemoteIPFallbacks(t *testing.T) {
	if got := RemoteIP(nil); got != "unknown" {
		t.Fatalf("RemoteIP(nil) = %q, want unknown", got)
	}
	if got := RemoteIP(testAddr("opaque")); got != "opaque" {
		t.Fatalf("RemoteIP(opaque) = %q, want opaque", got)
	}
	if got := RemoteIP(&net.TCPAddr{IP: net.ParseIP("::1"), Port: 22}); got != "::1" {
		t.Fatalf("RemoteIP(::1) = %q", got)
	}
}

func TestIdentityFromMissing(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Fatal("expected no identity on a bare context")
	}
}

type testAddr string

func (a testAddr) Network() string { return "test" }
func (a testAddr) String() string  { return string(a) }
