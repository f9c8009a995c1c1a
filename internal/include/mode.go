package include

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Mode selects the renderer entry point used for included pages.
type Mode string

const (
	ModeShow    Mode = "show"
	ModePublish Mode = "publish"
	ModeExport  Mode = "export"
	ModeS5      Mode = "s5"
)

// ErrUnsupportedMode reports a rendering mode outside the closed set.
var ErrUnsupportedMode = errors.New("include: unsupported rendering mode")

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeShow, ModePublish, ModeExport, ModeS5}
}

// ParseMode normalises value. Empty selects ModeShow; anything else outside
// the supported set fails.
func ParseMode(value string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return ModeShow, nil
	}
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

// Validate returns a validation error for modes outside the supported set.
func (m Mode) Validate() error {
	switch m {
	case ModeShow, ModePublish, ModeExport, ModeS5:
		return nil
	}
	return goerrors.Wrap(ErrUnsupportedMode, goerrors.CategoryValidation, fmt.Sprintf("unsupported rendering mode %q", string(m))).
		WithTextCode("UNSUPPORTED_RENDER_MODE")
}

func (m Mode) String() string {
	return string(m)
}
