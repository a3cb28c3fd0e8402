package models

import "time"

// Record is one post extracted from the rendered feed.
type Record struct {
	// ID is the numeric post identifier with any media suffix removed.
	ID string `json:"id"`

	// URL is the absolute canonical post link. It always contains ID.
	URL string `json:"url"`

	// Text is the post body, possibly multi-paragraph. Never null.
	Text string `json:"text"`

	// Author is the handle of the posting account; nil when not requested
	// or not found.
	Author *string `json:"author"`

	// CreatedAt comes from the post's machine-readable time element.
	CreatedAt *time.Time `json:"createdAt"`

	// IsRepost is set when the post carries a social-context annotation.
	IsRepost bool `json:"isRepost"`

	// EngagementRaw is the unparsed accessible label of the action bar,
	// e.g. "12 replies, 3 reposts, 40 likes".
	EngagementRaw *string `json:"engagementRaw"`
}

// Batch is the ordered set of candidate records produced from one snapshot
// of rendered content.
type Batch struct {
	Records []Record

	// Blocks is the number of content blocks matched, including blocks
	// that were skipped for lack of a canonical link.
	Blocks int

	// Scheme names the selector scheme that matched, empty when none did.
	Scheme string
}

// SessionMode selects whether a browsing session carries credentials.
type SessionMode string

const (
	ModeAuthenticated SessionMode = "authenticated"
	ModeGuest         SessionMode = "guest"
)

// TargetKind distinguishes list pages, which render on the mobile host,
// from every other timeline-like page.
type TargetKind int

const (
	TargetTimeline TargetKind = iota
	TargetList
)

func (k TargetKind) String() string {
	if k == TargetList {
		return "list"
	}
	return "timeline"
}
