package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// ManifestFile names the per-web settings file.
const ManifestFile = "web.yaml"

var ErrFilesystemRequired = errors.New("fixtures: filesystem required")

// WebManifest is the content of a web.yaml file. Missing names default to
// the directory name.
type WebManifest struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	Published bool   `yaml:"published"`
}

type pageFrontMatter struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
}

// Result summarises a load.
type Result struct {
	Webs  []*webs.Web
	Pages []*pages.Page
}

// Option customises a Loader.
type Option func(*Loader)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader seeds webs and pages from a directory tree laid out as
// <web>/web.yaml and <web>/<Page>.md.
type Loader struct {
	webs   webs.Service
	pages  pages.Service
	logger interfaces.Logger
}

func NewLoader(webService webs.Service, pageService pages.Service, opts ...Option) *Loader {
	l := &Loader{
		webs:   webService,
		pages:  pageService,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load walks the top-level directories of fsys in name order. Each one
// becomes a web.
func (l *Loader) Load(ctx context.Context, fsys fs.FS) (*Result, error) {
	if fsys == nil {
		return nil, ErrFilesystemRequired
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("fixtures: read root: %w", err)
	}

	result := &Result{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		web, loaded, err := l.loadWeb(ctx, fsys, entry.Name())
		if err != nil {
			return nil, err
		}
		result.Webs = append(result.Webs, web)
		result.Pages = append(result.Pages, loaded...)
	}

	l.logger.Info("fixtures.load.completed", "webs", len(result.Webs), "pages", len(result.Pages))
	return result, nil
}

func (l *Loader) loadWeb(ctx context.Context, fsys fs.FS, dir string) (*webs.Web, []*pages.Page, error) {
	manifest, err := readManifest(fsys, dir)
	if err != nil {
		return nil, nil, err
	}

	web, err := l.webs.CreateWeb(ctx, webs.CreateWebInput{
		Name:      manifest.Name,
		Address:   manifest.Address,
		Password:  manifest.Password,
		Published: manifest.Published,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fixtures: create web %s: %w", dir, err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.md"))
	if err != nil {
		return nil, nil, fmt.Errorf("fixtures: list pages in %s: %w", dir, err)
	}
	sort.Strings(files)

	var loaded []*pages.Page
	for _, file := range files {
		page, err := l.loadPage(ctx, fsys, web, file)
		if err != nil {
			return nil, nil, err
		}
		loaded = append(loaded, page)
	}

	logging.WithFields(l.logger, map[string]any{"web": web.Address}).
		Debug("fixtures.web.loaded", "pages", len(loaded))
	return web, loaded, nil
}

func (l *Loader) loadPage(ctx context.Context, fsys fs.FS, web *webs.Web, file string) (*pages.Page, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", file, err)
	}

	var meta pageFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("fixtures: parse front matter %s: %w", file, err)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSuffix(path.Base(file), ".md")
	}

	page, err := l.pages.CreatePage(ctx, pages.CreatePageInput{
		WebID:   web.ID,
		Name:    name,
		Content: string(body),
		Author:  meta.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("fixtures: create page %s: %w", file, err)
	}
	return page, nil
}

func readManifest(fsys fs.FS, dir string) (WebManifest, error) {
	manifest := WebManifest{}
	data, err := fs.ReadFile(fsys, path.Join(dir, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return manifest, fmt.Errorf("fixtures: read manifest %s: %w", dir, err)
	default:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return manifest, fmt.Errorf("fixtures: parse manifest %s: %w", dir, err)
		}
		if err := validateManifest(dir, doc); err != nil {
			return manifest, err
		}
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return manifest, fmt.Errorf("fixtures: parse manifest %s: %w", dir, err)
		}
	}

	if strings.TrimSpace(manifest.Name) == "" {
		manifest.Name = dir
	}
	return manifest, nil
}
