package models

// ScrapeResult is what the convergence policy hands back to the caller.
type ScrapeResult struct {
	// Records holds at most Limit unique records in first-seen order.
	Records []Record

	// ModeUsed is the effective mode of the attempt the records came from.
	ModeUsed SessionMode

	// HitAuthWall reports whether any navigation landed on a login or
	// access-restricted page.
	HitAuthWall bool

	// FinalURL is the last observed URL of the chosen attempt.
	FinalURL string

	// RevealRounds is the number of reveal rounds run by the chosen attempt.
	RevealRounds int

	// Attempts summarises every session attempt in order.
	Attempts []Attempt
}

// Attempt summarises one session attempt.
type Attempt struct {
	Mode         SessionMode `json:"mode"`
	FinalURL     string      `json:"finalUrl"`
	HitAuthWall  bool        `json:"hitAuthWall"`
	Unique       int         `json:"unique"`
	RevealRounds int         `json:"revealRounds"`
	Err          string      `json:"error,omitempty"`
}

// ScrapeResponse is the JSON body of GET /scrape.
type ScrapeResponse struct {
	Count int         `json:"count"`
	Items []Record    `json:"items"`
	Meta  *ScrapeMeta `json:"meta,omitempty"`
}

// ScrapeMeta is only returned with debug=true.
type ScrapeMeta struct {
	ModeUsed     SessionMode `json:"modeUsed"`
	HitAuthWall  bool        `json:"hitAuthWall"`
	FinalURL     string      `json:"finalUrl"`
	RevealRounds int         `json:"revealRounds"`
	Attempts     []Attempt   `json:"attempts"`
	CacheStatus  string      `json:"cacheStatus,omitempty"`
	TotalMs      int64       `json:"totalMs"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	ActiveScrapes int    `json:"active_scrapes"`
	Version       string `json:"version"`
}
