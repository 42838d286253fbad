package schema

import "github.com/microcosm-cc/bluemonday"

// ugcPolicy allows the formatting tags user content legitimately carries and
// strips scripts, event handlers and javascript: URLs. Safe for concurrent use.
var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips unsafe markup from one user-supplied string.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

// SanitizeBlocks sanitizes every string value in each block's data payload.
// Applied on the write path only; stored rows are trusted on read.
func SanitizeBlocks(blocks []Block) {
	for i := range blocks {
		for k, v := range blocks[i].Data {
			if s, ok := v.(string); ok {
				blocks[i].Data[k] = ugcPolicy.Sanitize(s)
			}
		}
	}
}
