package include

import "github.com/goliatone/go-wiki/internal/chunks"

// ExcludedKinds lists the metadata an included page never passes on to its
// includer.
var ExcludedKinds = []chunks.Kind{chunks.KindRedirect, chunks.KindCategory}

// Merge drops the excluded kinds from included and appends what remains to
// including. The rendered text of included is not touched.
func Merge(including, included *chunks.Content, excluded ...chunks.Kind) {
	if including == nil || included == nil {
		return
	}
	including.MergeChunks(included.DeleteChunks(excluded...).Chunks())
}
