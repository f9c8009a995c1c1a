package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	wiki "github.com/goliatone/go-wiki"
)

type options struct {
	FixturesDir string
	Web         string
	Page        string
	Mode        string
	Policy      string
	MaxDepth    int
	ShowRefs    bool
	Verbose     bool
}

func main() {
	var (
		fixturesDir = flag.String("fixtures", "wiki", "Directory holding one sub-directory per web")
		web         = flag.String("web", "", "Web name or address")
		page        = flag.String("page", "HomePage", "Page to render")
		mode        = flag.String("mode", "show", "Render mode: show, publish, export or s5")
		policy      = flag.String("policy", "stack", "Include chain policy: stack or reset")
		maxDepth    = flag.Int("max-depth", 32, "Nested include limit (0 disables it)")
		showRefs    = flag.Bool("refs", false, "Print references, categories and redirects as JSON after the page")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)

	flag.Parse()

	if strings.TrimSpace(*web) == "" {
		log.Fatalf("--web is required")
	}

	opts := options{
		FixturesDir: *fixturesDir,
		Web:         *web,
		Page:        *page,
		Mode:        *mode,
		Policy:      *policy,
		MaxDepth:    *maxDepth,
		ShowRefs:    *showRefs,
		Verbose:     *verbose,
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("render: %v", err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg := wiki.DefaultConfig()
	cfg.Render.ChainPolicy = opts.Policy
	cfg.Render.MaxIncludeDepth = opts.MaxDepth
	if opts.Verbose {
		cfg.Features.Logger = true
		cfg.Logging.Level = "debug"
	}

	module, err := wiki.New(cfg)
	if err != nil {
		return fmt.Errorf("initialise wiki module: %w", err)
	}
	defer module.Close()

	if _, err := module.LoadFixtures(ctx, os.DirFS(opts.FixturesDir)); err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}

	content, err := module.Render(ctx, opts.Web, opts.Page, wiki.Mode(strings.ToLower(strings.TrimSpace(opts.Mode))))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, content.PreRendered)

	if opts.ShowRefs {
		summary := map[string][]string{
			"references": content.References(),
			"categories": content.Categories(),
			"redirects":  content.Redirects(),
		}
		payload, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", payload)
	}
	return nil
}
