package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

// statusPath captures the path prefix up to and including the numeric post
// identifier. Anything after the identifier (media index, analytics, …)
// is not part of the canonical link.
var statusPath = regexp.MustCompile(`^(.*?/status(?:es)?/)(\d+)(?:/|$)`)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// reservedSegments are first path segments that are site routes, never
// account handles.
var reservedSegments = map[string]struct{}{
	"i": {}, "home": {}, "explore": {}, "search": {}, "notifications": {},
	"messages": {}, "settings": {}, "hashtag": {}, "intent": {}, "share": {},
}

// NormalizeID reduces a raw identifier segment to the bare post id: query,
// fragment and any trailing path such as "/photo/1" are dropped, so two
// links that differ only by a media suffix yield the same id.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "/")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

// permalink is a resolved canonical post link.
type permalink struct {
	id    string
	url   string
	owner string
}

// parsePermalink resolves href against base and extracts the post id. It
// reports false when the link carries no numeric status identifier.
func parsePermalink(base *url.URL, href string) (permalink, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return permalink{}, false
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	m := statusPath.FindStringSubmatch(abs.Path)
	if m == nil {
		return permalink{}, false
	}
	id := NormalizeID(m[2])
	if id == "" {
		return permalink{}, false
	}

	canonical := url.URL{Scheme: abs.Scheme, Host: abs.Host, Path: m[1] + id}
	if canonical.Scheme == "" {
		canonical.Scheme = "https"
	}

	return permalink{
		id:    id,
		url:   canonical.String(),
		owner: handleFromPath(m[1]),
	}, true
}

// handleFromPath returns the account handle named by the first segment of
// p, or "" when the segment is a site route or not a valid handle.
func handleFromPath(p string) string {
	seg := strings.Trim(p, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if _, reserved := reservedSegments[strings.ToLower(seg)]; reserved {
		return ""
	}
	if !handlePattern.MatchString(seg) {
		return ""
	}
	return seg
}
