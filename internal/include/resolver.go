package include

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
	"github.com/goliatone/go-wiki/pkg/interfaces"
	"github.com/google/uuid"
)

// DefaultMaxDepth bounds nested includes unless overridden.
const DefaultMaxDepth = 32

var (
	ErrContextRequired = errors.New("include: resolution context required")
	ErrContentRequired = errors.New("include: including content required")
)

// State is the terminal state of one directive.
type State string

const (
	StateResolved      State = "resolved"
	StateForbidden     State = "forbidden"
	StateCycleDetected State = "cycle_detected"
	StateTargetMissing State = "target_missing"
	StateDepthExceeded State = "depth_exceeded"
)

// Result is handed back to the chunk engine for one directive.
type Result struct {
	State State
	// UnmaskText replaces the marker in the including page.
	UnmaskText string
	// Message is the plain text diagnostic for non-resolved states.
	Message string
	// Remove asks the caller to drop the include chunk from its content.
	Remove bool
	Target Target
}

// WebLookup finds webs by their two keys.
type WebLookup interface {
	GetByName(ctx context.Context, name string) (*webs.Web, error)
	GetByAddress(ctx context.Context, address string) (*webs.Web, error)
}

// PageLookup finds a page with its current revision loaded.
type PageLookup interface {
	FindPage(ctx context.Context, webID uuid.UUID, name string) (*pages.Page, error)
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics wires the recorder used for telemetry.
func WithMetrics(metrics Metrics) Option {
	return func(r *Resolver) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// WithMaxDepth sets the nested include limit. Zero disables it.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// WithClock overrides the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver turns include directives into rendered content.
type Resolver struct {
	webs       WebLookup
	pages      PageLookup
	dispatcher *Dispatcher
	logger     interfaces.Logger
	metrics    Metrics
	maxDepth   int
	now        func() time.Time
}

// NewResolver builds a resolver over the given lookups and renderer.
func NewResolver(webLookup WebLookup, pageLookup PageLookup, renderer PageRenderer, opts ...Option) *Resolver {
	r := &Resolver{
		webs:       webLookup,
		pages:      pageLookup,
		dispatcher: NewDispatcher(renderer),
		logger:     logging.NoOp(),
		metrics:    NoOpMetrics(),
		maxDepth:   DefaultMaxDepth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetRenderer replaces the page renderer. Renderers that resolve includes
// themselves need the resolver first, so they are attached afterwards.
func (r *Resolver) SetRenderer(renderer PageRenderer) {
	r.dispatcher = NewDispatcher(renderer)
}

// Rule returns the chunk rule resolving include markers for one render.
func (r *Resolver) Rule(rc *ResolutionContext) chunks.Rule {
	return chunks.Rule{
		Kind:    chunks.KindInclude,
		Pattern: Pattern,
		Handler: r.Handler(rc),
	}
}

// Handler records an include chunk on the content, resolves the directive
// and drops the chunk again when the result asks for removal.
func (r *Resolver) Handler(rc *ResolutionContext) chunks.Handler {
	return func(ctx context.Context, match chunks.Match, content *chunks.Content) (string, error) {
		directive, err := parseMatch(match)
		if errors.Is(err, ErrMalformedDirective) {
			return "", chunks.ErrSkip
		}
		if err != nil {
			return "", err
		}

		chunk := &chunks.Chunk{
			Kind:   chunks.KindInclude,
			Text:   match.Text,
			Web:    directive.Qualifier,
			Target: directive.PageName,
		}
		if content != nil {
			content.AddChunk(chunk)
		}

		result, err := r.Resolve(ctx, rc, directive, content)
		if err != nil {
			return "", err
		}
		if result.Remove {
			content.DeleteChunk(chunk)
		}
		return result.UnmaskText, nil
	}
}

// ResolveMatch parses a marker found by the chunk engine and resolves it.
func (r *Resolver) ResolveMatch(ctx context.Context, rc *ResolutionContext, match chunks.Match, including *chunks.Content) (Result, error) {
	directive, err := parseMatch(match)
	if err != nil {
		return Result{}, err
	}
	return r.Resolve(ctx, rc, directive, including)
}

// Resolve runs one directive against the including content. Recoverable
// outcomes come back as a Result; only an unsupported mode, lookup failures
// and renderer failures are errors.
func (r *Resolver) Resolve(ctx context.Context, rc *ResolutionContext, directive Directive, including *chunks.Content) (Result, error) {
	if rc == nil {
		return Result{}, ErrContextRequired
	}
	if err := rc.Mode.Validate(); err != nil {
		return Result{}, err
	}
	if including == nil {
		return Result{}, ErrContentRequired
	}
	if directive.PageName == "" {
		return Result{}, ErrMalformedDirective
	}

	started := r.now()
	chain := rc.Chain()
	if chain.Policy() == PolicyReset {
		rc.anchor(including.Web, including.PageName)
	}

	webName := directive.Qualifier
	if webName == "" && including.Web != nil {
		webName = including.Web.Name
	}

	targetWeb, err := r.lookupWeb(ctx, directive, including.Web)
	if err != nil {
		return r.fail(ctx, rc, directive, including, err)
	}
	page, err := r.lookupPage(ctx, targetWeb, directive.PageName)
	if err != nil {
		return r.fail(ctx, rc, directive, including, err)
	}

	if page == nil {
		if chain.Policy() == PolicyReset {
			chain.Reset()
		}
		return r.finish(ctx, rc, directive, including, started, Result{
			State:      StateTargetMissing,
			UnmaskText: missingMarkup(directive.PageName),
			Message:    missingMessage(directive.PageName),
		}), nil
	}

	target := Target{Web: targetWeb, Page: page, Revision: page.Revision}

	if !Allow(including.Web, targetWeb) {
		return r.finish(ctx, rc, directive, including, started, Result{
			State:      StateForbidden,
			UnmaskText: forbiddenMarkup(webName, directive.PageName),
			Message:    forbiddenMessage(webName, directive.PageName),
			Target:     target,
		}), nil
	}

	if r.maxDepth > 0 && rc.Depth() >= r.maxDepth {
		return r.finish(ctx, rc, directive, including, started, Result{
			State:      StateDepthExceeded,
			UnmaskText: depthMarkup(directive.PageName),
			Message:    depthMessage(directive.PageName),
			Target:     target,
		}), nil
	}

	if chain.Enter(FrameFor(targetWeb, page.Name)) {
		if chain.Policy() == PolicyReset {
			chain.Reset()
		}
		return r.finish(ctx, rc, directive, including, started, Result{
			State:      StateCycleDetected,
			UnmaskText: cycleMarkup(including.PageName),
			Message:    cycleMessage(including.PageName),
			Remove:     true,
			Target:     target,
		}), nil
	}

	ascend := rc.descend()
	included, err := r.dispatcher.Render(ctx, rc, target, rc.Mode)
	ascend()
	chain.Leave()
	if err != nil {
		return r.fail(ctx, rc, directive, including, err)
	}

	result := Result{State: StateResolved, Target: target}
	if included != nil {
		Merge(including, included, ExcludedKinds...)
		result.UnmaskText = included.PreRendered
	}
	return r.finish(ctx, rc, directive, including, started, result), nil
}

func (r *Resolver) lookupWeb(ctx context.Context, directive Directive, includer *webs.Web) (*webs.Web, error) {
	if !directive.HasQualifier() {
		return includer, nil
	}
	if r.webs == nil {
		return nil, nil
	}

	web, err := r.webs.GetByName(ctx, directive.Qualifier)
	if err == nil && web != nil {
		return web, nil
	}
	if err != nil && !webs.IsNotFound(err) {
		return nil, err
	}

	web, err = r.webs.GetByAddress(ctx, directive.Qualifier)
	if err != nil {
		if webs.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return web, nil
}

func (r *Resolver) lookupPage(ctx context.Context, web *webs.Web, name string) (*pages.Page, error) {
	if web == nil || r.pages == nil {
		return nil, nil
	}
	page, err := r.pages.FindPage(ctx, web.ID, name)
	if err != nil {
		if pages.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return page, nil
}

func (r *Resolver) finish(ctx context.Context, rc *ResolutionContext, directive Directive, including *chunks.Content, started time.Time, result Result) Result {
	duration := r.now().Sub(started)
	r.metrics.ObserveResolution(result.State, duration)

	fields := r.fields(rc, directive, including)
	fields["duration_ms"] = duration.Milliseconds()
	logger := logging.WithFields(r.logger.WithContext(ctx), fields)
	if result.State == StateResolved {
		logger.Debug("include.resolve." + string(result.State))
	} else {
		logger.Debug("include.resolve."+string(result.State), "message", result.Message)
	}
	return result
}

func (r *Resolver) fail(ctx context.Context, rc *ResolutionContext, directive Directive, including *chunks.Content, err error) (Result, error) {
	logging.WithFields(r.logger.WithContext(ctx), r.fields(rc, directive, including)).
		Error("include.resolve.failed", "error", err)
	return Result{}, fmt.Errorf("include %s: %w", directive.PageName, err)
}

func (r *Resolver) fields(rc *ResolutionContext, directive Directive, including *chunks.Content) map[string]any {
	fields := map[string]any{
		"page":        including.PageName,
		"target_web":  directive.Qualifier,
		"target_page": directive.PageName,
		"mode":        rc.Mode.String(),
		"depth":       rc.Depth(),
	}
	if including.Web != nil {
		fields["web"] = including.Web.Address
	}
	return fields
}

func parseMatch(match chunks.Match) (Directive, error) {
	if len(match.Groups) > 1 {
		return Parse(match.Groups[1])
	}
	return ParseMarker(match.Text)
}
