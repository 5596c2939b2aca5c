package share

import (
	"net/url"
	"strings"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
)

// Fallback path segments for blank names
const (
	UnnamedBand  = "Unnamed-Band"
	UntitledPlot = "Untitled-Plot"
)

// Link is a parsed share URL
type Link struct {
	Band    string
	Plot    string
	Payload string
}

// BuildURL returns base/s/{band}/{plot}#payload. Names are trimmed and
// escaped; blank names use the fallbacks.
func BuildURL(base, band, plot, payload string) string {
	band = strings.TrimSpace(band)
	if band == "" {
		band = UnnamedBand
	}
	plot = strings.TrimSpace(plot)
	if plot == "" {
		plot = UntitledPlot
	}
	return strings.TrimRight(base, "/") + "/s/" + escapeComponent(band) + "/" + escapeComponent(plot) + "#" + payload
}

// ParseURL splits a share URL into names and payload. The scheme and host
// are ignored, so relative links parse too.
func ParseURL(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, apperrors.Wrap(err, apperrors.ErrInvalidInput, "invalid share URL")
	}
	if u.Fragment == "" {
		return Link{}, apperrors.InvalidInput("share URL has no payload")
	}

	parts := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] != "s" {
		return Link{}, apperrors.InvalidInputf("not a share URL: %s", u.Path)
	}
	band, err := url.PathUnescape(parts[len(parts)-2])
	if err != nil {
		return Link{}, apperrors.Wrap(err, apperrors.ErrInvalidInput, "invalid band name in share URL")
	}
	plot, err := url.PathUnescape(parts[len(parts)-1])
	if err != nil {
		return Link{}, apperrors.Wrap(err, apperrors.ErrInvalidInput, "invalid plot name in share URL")
	}
	return Link{Band: band, Plot: plot, Payload: u.Fragment}, nil
}

// PayloadOf accepts either a full share URL or a bare payload
func PayloadOf(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "#") {
		return s, nil
	}
	link, err := ParseURL(s)
	if err != nil {
		return "", err
	}
	return link.Payload, nil
}

// escapeComponent escapes like JavaScript's encodeURIComponent so links
// match the ones the web editor builds.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
