package surfaces

// Kind identifies a UI surface. The host tracks at most one live handle
// per kind.
type Kind string

const (
	// KindPrimary is the main dashboard window.
	KindPrimary Kind = "primary"
	// KindOverlay is the floating companion overlay.
	KindOverlay Kind = "overlay"
)

// Valid reports whether k names a known surface kind.
func (k Kind) Valid() bool {
	return k == KindPrimary || k == KindOverlay
}

// SecurityPolicy is the immutable per-kind security configuration applied
// when a surface is created. Surfaces never receive host objects; their
// only privileged capability is the gateway socket.
type SecurityPolicy struct {
	// IsolatedContext keeps surface script in its own world.
	IsolatedContext bool
	// Sandboxed runs the surface under the opener's sandbox profile.
	Sandboxed bool
	// AllowInsecureContent is always false; kept explicit so the policy
	// record reads complete.
	AllowInsecureContent bool
	// ContentSecurityPolicy is attached to every asset response for this kind.
	ContentSecurityPolicy string
}

// PolicyFor returns the fixed security policy for a surface kind.
// The primary surface allows a broader style/font source set; the overlay
// is minimal.
func PolicyFor(kind Kind) SecurityPolicy {
	return SecurityPolicy{
		IsolatedContext:       true,
		Sandboxed:             true,
		AllowInsecureContent:  false,
		ContentSecurityPolicy: cspFor(kind),
	}
}

func cspFor(kind Kind) string {
	switch kind {
	case KindPrimary:
		return "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
			"font-src 'self' https://fonts.gstatic.com; " +
			"img-src 'self' data:; " +
			"connect-src 'self' http://127.0.0.1:* ws://127.0.0.1:*; " +
			"object-src 'none'; base-uri 'none'; frame-ancestors 'none'"
	default:
		return "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self' http://127.0.0.1:* ws://127.0.0.1:*; " +
			"object-src 'none'; base-uri 'none'; frame-ancestors 'none'"
	}
}
