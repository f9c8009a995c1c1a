package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are prefixed by entity type so a web and a page sharing a name never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// WebUUID keys webs by their address, which is unique and case-insensitive.
func WebUUID(address string) uuid.UUID {
	return UUID("go-wiki:web:" + strings.ToLower(strings.TrimSpace(address)))
}

// PageUUID keys pages by web and name. Page names are case-sensitive.
func PageUUID(webID uuid.UUID, name string) uuid.UUID {
	return UUID("go-wiki:page:" + webID.String() + ":" + strings.TrimSpace(name))
}

// RevisionUUID keys revisions by page and sequence number.
func RevisionUUID(pageID uuid.UUID, number int) uuid.UUID {
	return UUID("go-wiki:revision:" + pageID.String() + ":" + strconv.Itoa(number))
}
