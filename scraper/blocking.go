package scraper

// trackerDomains are analytics and ad hosts a feed page pulls in that never
// contribute post content.
var trackerDomains = []string{
	"ads-api.x.com",
	"ads-twitter.com",
	"analytics.twitter.com",
	"static.ads-twitter.com",
	"doubleclick.net",
	"google-analytics.com",
	"googletagmanager.com",
	"googlesyndication.com",
	"scorecardresearch.com",
	"amazon-adsystem.com",
	"adsrvr.org",
	"criteo.com",
	"hotjar.com",
	"sentry.io",
}

// blockPatterns merges the configured URL patterns with patterns covering
// every tracker domain and its subdomains. Duplicates are dropped and order
// is preserved.
func blockPatterns(configured []string) []string {
	out := make([]string, 0, len(configured)+2*len(trackerDomains))
	seen := make(map[string]struct{}, cap(out))
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range configured {
		add(p)
	}
	for _, d := range trackerDomains {
		add("*://" + d + "/*")
		add("*://*." + d + "/*")
	}
	return out
}
