package chunks

import (
	"slices"

	"github.com/goliatone/go-wiki/internal/webs"
)

// Content is the result of rendering one page: its metadata chunks and the
// final HTML payload.
type Content struct {
	Web      *webs.Web
	PageName string

	chunks      []*Chunk
	PreRendered string
}

// NewContent starts an empty result for page in web.
func NewContent(web *webs.Web, pageName string) *Content {
	return &Content{Web: web, PageName: pageName}
}

// Chunks returns the metadata entries in extraction order.
func (c *Content) Chunks() []*Chunk {
	return slices.Clone(c.chunks)
}

// AddChunk appends a metadata entry.
func (c *Content) AddChunk(chunk *Chunk) {
	if chunk == nil {
		return
	}
	c.chunks = append(c.chunks, chunk)
}

// DeleteChunk removes chunk by identity and reports whether it was present.
func (c *Content) DeleteChunk(chunk *Chunk) bool {
	idx := slices.Index(c.chunks, chunk)
	if idx < 0 {
		return false
	}
	c.chunks = slices.Delete(c.chunks, idx, idx+1)
	return true
}

// DeleteChunks removes every entry whose kind is listed and returns c.
func (c *Content) DeleteChunks(kinds ...Kind) *Content {
	if len(kinds) == 0 {
		return c
	}
	c.chunks = slices.DeleteFunc(c.chunks, func(chunk *Chunk) bool {
		return slices.Contains(kinds, chunk.Kind)
	})
	return c
}

// MergeChunks appends entries from another content, preserving their order.
func (c *Content) MergeChunks(chunks []*Chunk) {
	for _, chunk := range chunks {
		c.AddChunk(chunk)
	}
}

// ChunksOf returns the entries of the given kind.
func (c *Content) ChunksOf(kind Kind) []*Chunk {
	var out []*Chunk
	for _, chunk := range c.chunks {
		if chunk.Kind == kind {
			out = append(out, chunk)
		}
	}
	return out
}

// References lists the page names this content depends on through links
// and includes, without duplicates.
func (c *Content) References() []string {
	var out []string
	for _, chunk := range c.chunks {
		if chunk.Kind != KindInclude && chunk.Kind != KindWikiLink {
			continue
		}
		if !slices.Contains(out, chunk.Target) {
			out = append(out, chunk.Target)
		}
	}
	return out
}

// Categories lists the declared categories.
func (c *Content) Categories() []string {
	var out []string
	for _, chunk := range c.ChunksOf(KindCategory) {
		out = append(out, chunk.Target)
	}
	return out
}

// Redirects lists the page names declared as redirecting here.
func (c *Content) Redirects() []string {
	var out []string
	for _, chunk := range c.ChunksOf(KindRedirect) {
		out = append(out, chunk.Target)
	}
	return out
}
