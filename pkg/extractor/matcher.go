package extractor

import (
	"fmt"
	"regexp"

	"github.com/gobwas/glob"
	"github.com/kataras/figma-keytheme/pkg/figma"
)

// Match is the result of a successful predicate evaluation.
// Label is the theme label (theme predicates) or the key id (key predicates).
// Theme is only set by key predicates whose pattern also names the theme.
// Display is only set by theme predicates whose pattern carries a "label" group;
// it replaces Label as the column header of that theme.
type Match struct {
	Label   string
	Theme   string
	Display string
}

// Matcher decides whether a node plays a role (theme scope or key leaf).
// depth is 0 for a requested root node.
type Matcher interface {
	Match(node *figma.Node, depth int) (Match, bool)
}

// Matcher kinds accepted by NewMatcher.
const (
	MatchDepth  = "depth"
	MatchLeaf   = "leaf"
	MatchGlob   = "glob"
	MatchRegexp = "regexp"
)

// Regexp group names understood by regexp matchers.
const (
	GroupTheme = "theme"
	GroupKey   = "key"
	GroupLabel = "label"
)

// MatcherSpec is the plain configuration of a predicate.
type MatcherSpec struct {
	Kind    string
	Pattern string
	Depth   int
	Types   []string
}

// NewMatcher builds a predicate. labelGroup names the regexp group that yields the label
// (GroupTheme for theme predicates, GroupKey for key predicates).
func NewMatcher(spec MatcherSpec, labelGroup string) (Matcher, error) {
	types := newTypeFilter(spec.Types)

	switch spec.Kind {
	case MatchDepth:
		if spec.Depth < 0 {
			return nil, fmt.Errorf("depth must not be negative, got %d", spec.Depth)
		}
		return &DepthMatcher{Depth: spec.Depth, types: types}, nil
	case MatchLeaf, "":
		return &LeafMatcher{types: types}, nil
	case MatchGlob:
		return NewGlobMatcher(spec.Pattern, spec.Types)
	case MatchRegexp:
		return NewRegexpMatcher(spec.Pattern, labelGroup, spec.Types)
	}

	return nil, fmt.Errorf("unknown matcher kind %q (must be depth, leaf, glob or regexp)", spec.Kind)
}

// typeFilter restricts a matcher to a set of node types. An empty filter allows every type.
type typeFilter map[string]bool

func newTypeFilter(types []string) typeFilter {
	if len(types) == 0 {
		return nil
	}
	f := make(typeFilter, len(types))
	for _, t := range types {
		f[t] = true
	}
	return f
}

func (f typeFilter) allows(node *figma.Node) bool {
	return len(f) == 0 || f[node.Type]
}

// DepthMatcher matches every node at a fixed depth below the requested roots,
// e.g. depth 1 selects one theme frame per direct child of each root.
type DepthMatcher struct {
	Depth int
	types typeFilter
}

func (m *DepthMatcher) Match(node *figma.Node, depth int) (Match, bool) {
	if depth != m.Depth || !m.types.allows(node) {
		return Match{}, false
	}
	return Match{Label: nodeLabel(node)}, true
}

// LeafMatcher matches nodes without children.
type LeafMatcher struct {
	types typeFilter
}

func (m *LeafMatcher) Match(node *figma.Node, _ int) (Match, bool) {
	if len(node.Children) > 0 || !m.types.allows(node) {
		return Match{}, false
	}
	return Match{Label: nodeLabel(node)}, true
}

// GlobMatcher matches node names against a shell-style pattern ("Key/*", "KB?_*").
type GlobMatcher struct {
	pattern string
	g       glob.Glob
	types   typeFilter
}

// NewGlobMatcher compiles pattern with '/' as the segment separator, matching
// Figma's slash-separated component naming.
func NewGlobMatcher(pattern string, types []string) (*GlobMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("glob matcher needs a pattern")
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return &GlobMatcher{pattern: pattern, g: g, types: newTypeFilter(types)}, nil
}

func (m *GlobMatcher) Match(node *figma.Node, _ int) (Match, bool) {
	if !m.types.allows(node) || !m.g.Match(node.Name) {
		return Match{}, false
	}
	return Match{Label: nodeLabel(node)}, true
}

// RegexpMatcher matches node names against a regular expression. The label group,
// when present and non-empty, becomes the label; a "theme" group on a key pattern
// overrides the inherited theme. A "label" group on a theme pattern names the
// column, e.g. `^KBC_(?P<theme>\d+)-(?P<label>.+)$` on "KBC_1-Dark".
type RegexpMatcher struct {
	re         *regexp.Regexp
	labelIdx   int
	themeIdx   int
	displayIdx int
	types      typeFilter
}

// NewRegexpMatcher compiles pattern and resolves its named groups.
func NewRegexpMatcher(pattern, labelGroup string, types []string) (*RegexpMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("regexp matcher needs a pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regexp %q: %w", pattern, err)
	}

	m := &RegexpMatcher{re: re, labelIdx: -1, themeIdx: -1, displayIdx: -1, types: newTypeFilter(types)}
	if labelGroup != "" {
		m.labelIdx = re.SubexpIndex(labelGroup)
	}
	if labelGroup == GroupTheme {
		m.displayIdx = re.SubexpIndex(GroupLabel)
	} else {
		m.themeIdx = re.SubexpIndex(GroupTheme)
	}

	return m, nil
}

func (m *RegexpMatcher) Match(node *figma.Node, _ int) (Match, bool) {
	if !m.types.allows(node) {
		return Match{}, false
	}
	sub := m.re.FindStringSubmatch(node.Name)
	if sub == nil {
		return Match{}, false
	}

	match := Match{Label: nodeLabel(node)}
	if m.labelIdx > 0 && sub[m.labelIdx] != "" {
		match.Label = sub[m.labelIdx]
	}
	if m.themeIdx > 0 {
		match.Theme = sub[m.themeIdx]
	}
	if m.displayIdx > 0 {
		match.Display = sub[m.displayIdx]
	}

	return match, true
}

// nodeLabel is the display name of a node, falling back to its id.
func nodeLabel(node *figma.Node) string {
	if node.Name != "" {
		return node.Name
	}
	return node.ID
}
