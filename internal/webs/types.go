package webs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// Web is an isolated collection of pages with its own access settings.
type Web struct {
	bun.BaseModel `bun:"table:webs,alias:w"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Address      string    `bun:"address,notnull,unique" json:"address"`
	PasswordHash *string   `bun:"password_hash" json:"-"`
	Published    bool      `bun:"published,notnull,default:false" json:"published"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// HasPassword reports whether the web is password protected.
func (w *Web) HasPassword() bool {
	return w != nil && w.PasswordHash != nil && *w.PasswordHash != ""
}

// CheckPassword compares plain against the stored hash. Webs without a
// password accept any input.
func (w *Web) CheckPassword(plain string) bool {
	if w == nil {
		return false
	}
	if !w.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(*w.PasswordHash), []byte(plain)) == nil
}

// SameAs reports whether both values refer to the same stored web.
func (w *Web) SameAs(other *Web) bool {
	if w == nil || other == nil {
		return false
	}
	if w.ID != uuid.Nil && other.ID != uuid.Nil {
		return w.ID == other.ID
	}
	return w.Address == other.Address
}

// HashPassword returns the bcrypt hash stored in Web.PasswordHash.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
