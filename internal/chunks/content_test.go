package chunks

import (
	"slices"
	"testing"
)

func TestContentDeleteChunkByIdentity(t *testing.T) {
	content := NewContent(nil, "Home")
	first := &Chunk{Kind: KindInclude, Target: "Menu"}
	second := &Chunk{Kind: KindInclude, Target: "Menu"}
	content.AddChunk(first)
	content.AddChunk(second)

	if !content.DeleteChunk(second) {
		t.Fatalf("expected chunk to be deleted")
	}
	got := content.Chunks()
	if len(got) != 1 || got[0] != first {
		t.Fatalf("expected only the first chunk to remain, got %+v", got)
	}
	if content.DeleteChunk(second) {
		t.Fatalf("expected second delete to report absence")
	}
}

func TestContentDeleteChunksByKind(t *testing.T) {
	content := NewContent(nil, "Home")
	content.MergeChunks([]*Chunk{
		{Kind: KindRedirect, Target: "Old"},
		{Kind: KindHeading, Target: "Intro", Level: 1},
		{Kind: KindCategory, Target: "docs"},
		{Kind: KindWikiLink, Target: "Other"},
	})

	content.DeleteChunks(KindRedirect, KindCategory)

	kinds := []Kind{}
	for _, chunk := range content.Chunks() {
		kinds = append(kinds, chunk.Kind)
	}
	if !slices.Equal(kinds, []Kind{KindHeading, KindWikiLink}) {
		t.Fatalf("unexpected kinds after delete: %v", kinds)
	}
}

func TestContentReferencesAreDeduplicated(t *testing.T) {
	content := NewContent(nil, "Home")
	content.AddChunk(&Chunk{Kind: KindWikiLink, Target: "A"})
	content.AddChunk(&Chunk{Kind: KindInclude, Target: "B"})
	content.AddChunk(&Chunk{Kind: KindWikiLink, Target: "A"})
	content.AddChunk(&Chunk{Kind: KindCategory, Target: "C"})

	if refs := content.References(); !slices.Equal(refs, []string{"A", "B"}) {
		t.Fatalf("unexpected references: %v", refs)
	}
	if cats := content.Categories(); !slices.Equal(cats, []string{"C"}) {
		t.Fatalf("unexpected categories: %v", cats)
	}
}
