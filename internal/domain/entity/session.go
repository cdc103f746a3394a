package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceInfo captures where a session was opened. The raw User-Agent is kept
// alongside the derived fields so the UI can always show something sensible.
type DeviceInfo struct {
	Browser     string // e.g., "Chrome", "Firefox".
	OS          string // e.g., "Windows", "macOS", "Android".
	DeviceClass string // "desktop", "mobile" or "tablet".
	IPAddress   string // Client IP at session creation.
	UserAgent   string // Raw User-Agent header.
}

// Session represents one login instance on one device. It is the revocable
// source of truth for authorization: a bearer token whose session is revoked
// stops authorizing requests before its own cryptographic expiry.
type Session struct {
	ID             uuid.UUID  // Unguessable session identifier, embedded in the bearer token.
	AccountID      uuid.UUID  // Links this session to the Account it belongs to.
	Device         DeviceInfo // Device metadata recorded at login.
	CreatedAt      time.Time  // When the login happened.
	LastActivityAt time.Time  // Advanced by heartbeats and authenticated requests.
	RevokedAt      *time.Time // Non-nil once the session stops authorizing requests.
}

// Revoked reports whether the session has been explicitly revoked.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Alive reports whether the session may still authorize requests at the given
// instant. idleTTL bounds the gap since the last heartbeat; maxAge is the
// absolute ceiling from creation, independent of activity.
func (s *Session) Alive(now time.Time, idleTTL, maxAge time.Duration) bool {
	if s.RevokedAt != nil {
		return false
	}
	if idleTTL > 0 && now.Sub(s.LastActivityAt) > idleTTL {
		return false
	}
	if maxAge > 0 && now.Sub(s.CreatedAt) > maxAge {
		return false
	}

	return true
}

// NewDeviceInfo derives browser/OS/device class from a raw User-Agent header.
// The matching is deliberately coarse; the raw string is preserved for
// anything it misses.
func NewDeviceInfo(userAgent, ip string) DeviceInfo {
	ua := strings.ToLower(userAgent)

	info := DeviceInfo{
		Browser:     "Unknown",
		OS:          "Unknown",
		DeviceClass: "desktop",
		IPAddress:   ip,
		UserAgent:   userAgent,
	}

	switch {
	case strings.Contains(ua, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(ua, "firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "chrome/"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari/"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		info.OS = "iOS"
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "mac os"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		info.DeviceClass = "tablet"
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "iphone"), strings.Contains(ua, "android"):
		info.DeviceClass = "mobile"
	}

	return info
}
