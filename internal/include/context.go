package include

import (
	"github.com/goliatone/go-wiki/internal/webs"
)

// ResolutionContext carries the state of one top-level render: the page
// being rendered, the rendering mode and the inclusion chain. Create one per
// render and never share it between goroutines.
type ResolutionContext struct {
	Web      *webs.Web
	PageName string
	Mode     Mode

	chain *Chain
	depth int
}

// NewResolutionContext starts a render of page in web. The page itself is
// the first frame of the chain. An empty mode selects ModeShow; other modes
// are validated when resolution starts.
func NewResolutionContext(web *webs.Web, page string, mode Mode, policy Policy) *ResolutionContext {
	if mode == "" {
		mode = ModeShow
	}
	rc := &ResolutionContext{
		Web:      web,
		PageName: page,
		Mode:     mode,
		chain:    NewChain(policy),
	}
	rc.chain.Enter(FrameFor(web, page))
	return rc
}

// Chain exposes the inclusion chain.
func (rc *ResolutionContext) Chain() *Chain {
	return rc.chain
}

// Depth is the number of includes currently being rendered.
func (rc *ResolutionContext) Depth() int {
	return rc.depth
}

// anchor makes sure the includer is tracked before a directive is checked.
// Under PolicyReset the chain may have been cleared by an earlier sibling.
func (rc *ResolutionContext) anchor(web *webs.Web, page string) {
	frame := FrameFor(web, page)
	if !rc.chain.Contains(frame) {
		rc.chain.Enter(frame)
	}
}

func (rc *ResolutionContext) descend() func() {
	rc.depth++
	return func() {
		rc.depth--
	}
}
