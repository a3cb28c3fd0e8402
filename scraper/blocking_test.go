package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockPatterns(t *testing.T) {
	got := blockPatterns([]string{"*.mp4*", "", "*.mp4*", "*.woff*"})

	assert.Equal(t, []string{"*.mp4*", "*.woff*"}, got[:2])
	assert.Contains(t, got, "*://ads-twitter.com/*")
	assert.Contains(t, got, "*://*.doubleclick.net/*")
	assert.Len(t, got, 2+2*len(trackerDomains))
}

func TestBlockPatterns_NeverBlocksContentHosts(t *testing.T) {
	for _, p := range blockPatterns(nil) {
		assert.NotContains(t, []string{"*://x.com/*", "*://*.x.com/*", "*://*.twimg.com/*"}, p)
	}
}
