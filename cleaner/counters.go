package cleaner

import "regexp"

// trailingCounters matches the run of engagement counters that the feed
// renders after the post body ("… 12 3 4.5K"). A counter is a number,
// optionally comma/period grouped, optionally followed by a magnitude
// letter. The run is anchored to the end of the text and must be preceded
// by whitespace (or the start of the text), so counters inside the body
// are never touched.
var trailingCounters = regexp.MustCompile(`(?i)(?:(?:^|\s+)\d(?:[\d.,]*\d)?[kmb]?)+\s*$`)

// StripCounters removes the trailing run of engagement counters from text
// unless keep is true. Applying it twice gives the same result as once.
func StripCounters(text string, keep bool) string {
	if keep {
		return text
	}
	return trailingCounters.ReplaceAllString(text, "")
}
