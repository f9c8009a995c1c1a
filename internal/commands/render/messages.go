package rendercmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/include"
)

const renderPageMessageType = "wiki.render.page"

// RenderPageCommand renders one page. The handler stores the outcome in
// Result when it is set.
type RenderPageCommand struct {
	// Web is a web name or address.
	Web  string `json:"web"`
	Page string `json:"page"`
	// Mode is one of show, publish, export or s5. Empty uses the configured default.
	Mode string `json:"mode,omitempty"`

	Result *RenderResult `json:"-"`
}

// RenderResult receives the rendered content.
type RenderResult struct {
	Content *chunks.Content
}

// Type implements command.Message.
func (RenderPageCommand) Type() string { return renderPageMessageType }

// Validate ensures the web and page are named and the mode is supported.
func (cmd RenderPageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Web, validation.Required, validation.By(notBlank("wiki.render.page.web_required", "web is required"))),
		validation.Field(&cmd.Page, validation.Required, validation.By(notBlank("wiki.render.page.page_required", "page is required"))),
		validation.Field(&cmd.Mode, validation.By(func(value any) error {
			if _, err := include.ParseMode(value.(string)); err != nil {
				return validation.NewError("wiki.render.page.mode_invalid", "mode must be show, publish, export or s5")
			}
			return nil
		})),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
