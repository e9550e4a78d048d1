package render

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-databind/pkg/dom"
)

// stringify renders a scalar record value for output. Floats drop the
// trailing zeros JSON decoding introduces.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(value)
	}
}

// AssignFunc writes a bound scalar value onto an output node.
type AssignFunc func(n *html.Node, value string)

// Assigners maps element names to the strategy used when a bound value
// lands on them. Most elements take the value as text content; the kinds
// registered here expose a dedicated value-carrying surface instead
// (input value, img src, time datetime, ...). Additional kinds can be
// registered without touching the render walk.
type Assigners struct {
	mu    sync.RWMutex
	byTag map[string]AssignFunc
}

// NewAssigners returns a table preloaded with the conventional
// value-surface elements.
func NewAssigners() *Assigners {
	a := &Assigners{byTag: map[string]AssignFunc{}}

	attr := func(name string) AssignFunc {
		return func(n *html.Node, value string) {
			dom.SetAttr(n, name, value)
		}
	}

	for _, tag := range []string{"input", "option", "meter", "progress", "data"} {
		a.byTag[tag] = attr("value")
	}
	for _, tag := range []string{"img", "audio", "video", "source", "iframe", "embed", "track"} {
		a.byTag[tag] = attr("src")
	}
	for _, tag := range []string{"a", "area", "link"} {
		a.byTag[tag] = attr("href")
	}
	a.byTag["object"] = attr("data")
	a.byTag["textarea"] = func(n *html.Node, value string) {
		dom.SetText(n, value)
	}
	a.byTag["time"] = func(n *html.Node, value string) {
		dom.SetAttr(n, "datetime", value)
		if dom.Text(n) == "" {
			dom.SetText(n, value)
		}
	}
	a.byTag["select"] = selectOption

	return a
}

// Register adds or replaces the strategy for an element name.
func (a *Assigners) Register(tag string, fn AssignFunc) error {
	if tag == "" {
		return fmt.Errorf("render: assigner tag is required")
	}
	if fn == nil {
		return fmt.Errorf("render: assigner func is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byTag[tag] = fn
	return nil
}

// Apply writes a value using the registered strategy for the node's tag,
// defaulting to text content.
func (a *Assigners) Apply(n *html.Node, value string) {
	a.mu.RLock()
	fn, ok := a.byTag[dom.Tag(n)]
	a.mu.RUnlock()
	if ok {
		fn(n, value)
		return
	}
	dom.SetText(n, value)
}

// usesContent reports whether assignment for this tag would replace the
// node's text content. The renderer only routes values through the
// sanitizer on content surfaces.
func (a *Assigners) usesContent(tag string) bool {
	a.mu.RLock()
	_, ok := a.byTag[tag]
	a.mu.RUnlock()
	return !ok || tag == "textarea"
}

// selectOption marks the option whose value (or text) matches and clears
// any previously selected siblings.
func selectOption(n *html.Node, value string) {
	for _, option := range dom.FindAll(n, func(node *html.Node) bool {
		return dom.Tag(node) == "option"
	}) {
		current, ok := dom.Attr(option, "value")
		if !ok {
			current = dom.Text(option)
		}
		if current == value {
			dom.SetAttr(option, "selected", "selected")
		} else {
			dom.RemoveAttr(option, "selected")
		}
	}
}
