package extractor

import "github.com/andybalholm/cascadia"

// DOM markers of the target site. The site changes its markup without
// notice; keep every selector here so a layout change is a one-file fix.
const (
	// Content block schemes, tried in order until one matches.
	BlockPrimary   = `article[data-testid="tweet"]`
	BlockArticle   = `article[role="article"]`
	BlockCell      = `div[data-testid="cellInnerDiv"] article`
	BlockTestIDAny = `[data-testid="tweet"]`

	// Canonical permalink: the status link that wraps the timestamp.
	PermalinkWithTime = `a[href*="/status/"]:has(time)`
	PermalinkAny      = `a[href*="/status/"]`

	TweetText     = `[data-testid="tweetText"]`
	LangTagged    = `[lang]`
	UserName      = `[data-testid="User-Name"] a[href^="/"]`
	Timestamp     = `time[datetime]`
	SocialContext = `[data-testid="socialContext"]`
	ActionBar     = `[role="group"][aria-label]`
)

type scheme struct {
	name    string
	matcher cascadia.Selector
}

var blockSchemes = []scheme{
	{"primary", cascadia.MustCompile(BlockPrimary)},
	{"article", cascadia.MustCompile(BlockArticle)},
	{"cell", cascadia.MustCompile(BlockCell)},
	{"testid", cascadia.MustCompile(BlockTestIDAny)},
}

var (
	permalinkWithTime = cascadia.MustCompile(PermalinkWithTime)
	permalinkAny      = cascadia.MustCompile(PermalinkAny)
	tweetText         = cascadia.MustCompile(TweetText)
	langTagged        = cascadia.MustCompile(LangTagged)
	userName          = cascadia.MustCompile(UserName)
	timestamp         = cascadia.MustCompile(Timestamp)
	socialContext     = cascadia.MustCompile(SocialContext)
	actionBar         = cascadia.MustCompile(ActionBar)
)
