package include

import "github.com/goliatone/go-wiki/internal/webs"

// Allow decides whether pages in target may be included from requesting.
// Open webs, published webs and the requester's own web are readable.
func Allow(requesting, target *webs.Web) bool {
	if target == nil {
		return false
	}
	return !target.HasPassword() || target.Published || target.SameAs(requesting)
}
