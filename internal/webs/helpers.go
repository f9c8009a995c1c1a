package webs

import (
	"strings"

	"github.com/goliatone/go-slug"
)

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DeriveAddress turns a web name into its default address ("Main Web" -> "main-web").
func DeriveAddress(name string) (string, error) {
	return slug.Normalize(strings.TrimSpace(name))
}

func cloneWeb(web *Web) *Web {
	if web == nil {
		return nil
	}
	cloned := *web
	cloned.PasswordHash = cloneString(web.PasswordHash)
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
