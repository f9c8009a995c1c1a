package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestWebUUIDIgnoresCase(t *testing.T) {
	if WebUUID("Main") != WebUUID(" main ") {
		t.Fatal("expected web ids to be case-insensitive")
	}
}

func TestPageUUIDIsCaseSensitive(t *testing.T) {
	web := WebUUID("main")
	if PageUUID(web, "HomePage") == PageUUID(web, "homepage") {
		t.Fatal("expected page ids to be case-sensitive")
	}
	if PageUUID(web, "HomePage") != PageUUID(web, "HomePage") {
		t.Fatal("expected page ids to be deterministic")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for empty key")
	}
}

func TestRevisionUUIDDiffersPerNumber(t *testing.T) {
	page := PageUUID(WebUUID("main"), "HomePage")
	if RevisionUUID(page, 1) == RevisionUUID(page, 2) {
		t.Fatal("expected distinct revision ids")
	}
}
