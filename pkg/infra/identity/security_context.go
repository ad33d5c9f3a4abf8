package identity

import (
	"fmt"
	"net"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/gofiber/fiber/v2"
)

// SecurityContext is the per-request metadata the pipeline works with. It is
// constructed once per inbound request and never persisted verbatim.
type SecurityContext struct {
	IP        string
	SessionID string
	UserAgent string
	Origin    string
	Referer   string
	Device    string
	Browser   string
}

// FromRequest extracts a SecurityContext from a fiber request, preferring
// proxy-forwarded IP headers in the same order the upstream proxies set them.
func FromRequest(c *fiber.Ctx) *SecurityContext {
	sc := &SecurityContext{
		IP:        clientIP(c),
		SessionID: c.Get("X-Session-Id"),
		UserAgent: strings.TrimSpace(c.Get("User-Agent")),
		Origin:    c.Get("Origin"),
		Referer:   c.Get("Referer"),
	}

	if sc.UserAgent != "" {
		ua := uasurfer.Parse(sc.UserAgent)
		sc.Device = ua.DeviceType.StringTrimPrefix()
		sc.Browser = fmt.Sprintf("%s %d", ua.Browser.Name.StringTrimPrefix(), ua.Browser.Version.Major)
	}
	return sc
}

func clientIP(c *fiber.Ctx) string {
	ipHeaders := []string{
		"X-Real-IP",
		"X-Forwarded-For",
		"X-Original-Forwarded-For",
		"True-Client-IP",
		"CF-Connecting-IP",
	}

	for _, header := range ipHeaders {
		if value := c.Get(header); value != "" {
			ips := strings.Split(value, ",")
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	return strings.TrimSpace(c.IP())
}
