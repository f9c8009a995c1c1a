package render

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-wiki/internal/include"
)

var ErrRouteGroupNotFound = errors.New("render: route group not found")

// Routes builds wiki link hrefs from a go-urlkit route group. Routes are
// named after render modes ("show", "publish") and receive the :web and
// :page params. Export links always point at local files.
type Routes struct {
	group *urlkit.Group
}

// NewRoutes resolves a dotted group path such as "frontend.wiki".
func NewRoutes(manager *urlkit.RouteManager, groupPath string) (routes *Routes, err error) {
	if manager == nil {
		return nil, ErrRouteGroupNotFound
	}
	parts := strings.Split(strings.TrimSpace(groupPath), ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("%w: %q", ErrRouteGroupNotFound, groupPath)
	}

	defer func() {
		if rec := recover(); rec != nil {
			routes, err = nil, fmt.Errorf("%w: %q", ErrRouteGroupNotFound, groupPath)
		}
	}()

	group := manager.Group(parts[0])
	for _, part := range parts[1:] {
		group = group.Group(part)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %q", ErrRouteGroupNotFound, groupPath)
	}
	return &Routes{group: group}, nil
}

func (r *Routes) href(mode include.Mode, address, page string) (href string, ok bool) {
	if r == nil || r.group == nil {
		return "", false
	}
	route := string(mode)
	if mode == include.ModeS5 {
		route = string(include.ModeShow)
	}

	defer func() {
		if rec := recover(); rec != nil {
			href, ok = "", false
		}
	}()

	built, err := r.group.Builder(route).
		WithParam("web", address).
		WithParam("page", page).
		Build()
	if err != nil {
		return "", false
	}
	return built, true
}
