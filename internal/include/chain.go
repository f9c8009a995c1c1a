package include

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-wiki/internal/webs"
)

// Policy selects what Leave does with the inclusion chain.
type Policy string

const (
	// PolicyStack pops only the frame that finished.
	PolicyStack Policy = "stack"
	// PolicyReset clears the whole chain after every include. Sibling
	// includes then never see each other's history.
	PolicyReset Policy = "reset"
)

// ErrUnknownPolicy reports an unsupported chain policy name.
var ErrUnknownPolicy = errors.New("include: unknown chain policy")

// ParsePolicy maps a configuration value to a Policy. Empty selects PolicyStack.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyStack:
		return PolicyStack, nil
	case PolicyReset:
		return PolicyReset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

// Frame identifies one page in the inclusion chain.
type Frame struct {
	Web  string
	Page string
}

// FrameFor builds the frame of page inside web. Webs are keyed by address.
func FrameFor(web *webs.Web, page string) Frame {
	frame := Frame{Page: page}
	if web != nil {
		frame.Web = strings.ToLower(web.Address)
	}
	return frame
}

func (f Frame) String() string {
	if f.Web == "" {
		return f.Page
	}
	return f.Web + ":" + f.Page
}

// Chain is the ordered list of pages currently being included. It belongs to
// a single render and is not safe for concurrent use.
type Chain struct {
	policy Policy
	frames []Frame
}

// NewChain returns an empty chain using policy.
func NewChain(policy Policy) *Chain {
	if policy == "" {
		policy = PolicyStack
	}
	return &Chain{policy: policy}
}

// Enter records frame and reports true when it is already in the chain. A
// detected cycle leaves the chain untouched.
func (c *Chain) Enter(frame Frame) bool {
	if c.Contains(frame) {
		return true
	}
	c.frames = append(c.frames, frame)
	return false
}

// Leave ends the most recent include according to the chain policy.
func (c *Chain) Leave() {
	if c.policy == PolicyReset {
		c.Reset()
		return
	}
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

// Reset empties the chain.
func (c *Chain) Reset() {
	c.frames = c.frames[:0]
}

func (c *Chain) Contains(frame Frame) bool {
	return slices.Contains(c.frames, frame)
}

func (c *Chain) Len() int {
	return len(c.frames)
}

// Frames returns a copy of the chain, outermost first.
func (c *Chain) Frames() []Frame {
	return slices.Clone(c.frames)
}

func (c *Chain) Policy() Policy {
	return c.policy
}
