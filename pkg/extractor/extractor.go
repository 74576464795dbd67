package extractor

import (
	"fmt"

	"github.com/kataras/figma-keytheme/pkg/figma"
)

// DefaultTheme is the theme label given to keys that have no theme ancestor.
const DefaultTheme = "default"

// pathSeparator joins ancestor names in Record.Path.
const pathSeparator = " / "

// Record is one styled key leaf found during traversal.
type Record struct {
	KeyID  string
	Theme  string
	Value  string
	NodeID string
	Path   string // ancestor names from the requested root down to the node
}

// Skip describes a node excluded from traversal because it is structurally malformed.
// The node's subtree is excluded with it.
type Skip struct {
	NodeID string
	Path   string
	Reason string
}

func (s Skip) String() string {
	if s.NodeID == "" {
		return fmt.Sprintf("%s: %s", s.Path, s.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", s.Path, s.NodeID, s.Reason)
}

// Extraction is the output of Extract: the records in document order plus
// the per-node issues absorbed along the way.
type Extraction struct {
	Records []Record
	Skipped []Skip

	Visited  int // nodes visited, skipped ones included
	Unstyled int // key candidates without the configured attribute

	headers map[string]string // theme label -> column header
}

// Rules configures how nodes are classified and which style attribute is read.
type Rules struct {
	Theme        Matcher // nil: every key gets DefaultTheme
	Key          Matcher
	Attribute    Attribute
	Format       ColorFormat
	DefaultTheme string
}

// DefaultRules treats each direct child of a requested root as a theme and
// every styled leaf below it as a key, reading the solid fill as hex.
func DefaultRules() Rules {
	return Rules{
		Theme:        &DepthMatcher{Depth: 1},
		Key:          &LeafMatcher{},
		Attribute:    AttrFill,
		Format:       FormatHex,
		DefaultTheme: DefaultTheme,
	}
}

// scope is the context inherited from ancestors during descent.
type scope struct {
	theme string
	path  string
}

// Extract walks each root depth-first in document order and returns one Record per
// key leaf carrying the configured attribute. It does not modify the trees.
// Themes whose predicate supplied a display label are renamed to it once the walk is done,
// including records that named the theme through a key pattern.
func Extract(roots []*figma.Node, rules Rules) *Extraction {
	if rules.Key == nil {
		rules.Key = &LeafMatcher{}
	}
	if rules.Attribute == "" {
		rules.Attribute = AttrFill
	}
	if rules.Format == "" {
		rules.Format = FormatHex
	}
	if rules.DefaultTheme == "" {
		rules.DefaultTheme = DefaultTheme
	}

	ex := &Extraction{}
	for _, root := range roots {
		if root == nil {
			continue
		}
		extractFromNode(root, 0, scope{theme: rules.DefaultTheme}, &rules, ex)
	}

	if len(ex.headers) > 0 {
		for i, r := range ex.Records {
			if header, ok := ex.headers[r.Theme]; ok {
				ex.Records[i].Theme = header
			}
		}
		ex.headers = nil
	}

	return ex
}

// extractFromNode visits node, then its children with the updated scope.
func extractFromNode(node *figma.Node, depth int, sc scope, rules *Rules, ex *Extraction) {
	ex.Visited++

	label := nodeLabel(node)
	if label == "" {
		label = "?"
	}
	path := joinPath(sc.path, label)

	if node.Malformed != "" {
		ex.Skipped = append(ex.Skipped, Skip{NodeID: node.ID, Path: path, Reason: node.Malformed})
		return
	}
	if node.ID == "" && node.Name == "" {
		ex.Skipped = append(ex.Skipped, Skip{Path: path, Reason: "node has neither id nor name"})
		return
	}

	// A theme node scopes itself as well as its subtree.
	if rules.Theme != nil {
		if m, ok := rules.Theme.Match(node, depth); ok && m.Label != "" {
			sc.theme = m.Label
			if m.Display != "" {
				if ex.headers == nil {
					ex.headers = make(map[string]string)
				}
				ex.headers[m.Label] = m.Display
			}
		}
	}

	if m, ok := rules.Key.Match(node, depth); ok {
		if value, found := StyleValue(node, rules.Attribute, rules.Format); found {
			theme := sc.theme
			if m.Theme != "" {
				theme = m.Theme
			}
			ex.Records = append(ex.Records, Record{
				KeyID:  m.Label,
				Theme:  theme,
				Value:  value,
				NodeID: node.ID,
				Path:   path,
			})
		} else {
			ex.Unstyled++
		}
	}

	sc.path = path
	for i := range node.Children {
		extractFromNode(&node.Children[i], depth+1, sc, rules, ex)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + pathSeparator + name
}
