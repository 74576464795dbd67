package figma

import (
	"encoding/json"
	"fmt"
)

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// A requested node that does not exist in the file comes back as a null entry, which decodes to a nil *NodeData.
type NodesResponse struct {
	Name         string               `json:"name"`
	LastModified string               `json:"lastModified"`
	Version      string               `json:"version"`
	Nodes        map[string]*NodeData `json:"nodes"`
}

// NodeData wraps the document subtree of one requested node.
type NodeData struct {
	Document Node `json:"document"`
}

// Node represents a single element in the Figma document tree hierarchy.
// Every style attribute is optional; frames and groups often carry none.
//
// Decoding is lenient below the node being decoded: a child that cannot be
// decoded, or a children value that is not a list, is recorded in Malformed
// instead of failing the whole document.
type Node struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Visible         *bool   `json:"visible,omitempty"`
	Children        []Node  `json:"-"`
	BackgroundColor *Color  `json:"backgroundColor,omitempty"`
	Fills           []Paint `json:"fills,omitempty"`
	Strokes         []Paint `json:"strokes,omitempty"`

	// Malformed describes why this node could not be used, empty for a sound node.
	Malformed string `json:"-"`
}

// UnmarshalJSON decodes a node and its children, tolerating structurally broken children.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var aux struct {
		plain
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*n = Node(aux.plain)
	n.Children = nil

	if len(aux.Children) == 0 || string(aux.Children) == "null" {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(aux.Children, &raw); err != nil {
		n.Malformed = "children is not a list"
		return nil
	}

	n.Children = make([]Node, len(raw))
	for i, childData := range raw {
		if err := json.Unmarshal(childData, &n.Children[i]); err != nil {
			id, name := identify(childData)
			n.Children[i] = Node{ID: id, Name: name, Malformed: fmt.Sprintf("undecodable node: %v", err)}
		}
	}

	return nil
}

// identify recovers whatever id and name a broken node still carries as strings.
func identify(data []byte) (id, name string) {
	var fields struct {
		ID   json.RawMessage `json:"id"`
		Name json.RawMessage `json:"name"`
	}
	if json.Unmarshal(data, &fields) != nil {
		return "", ""
	}
	_ = json.Unmarshal(fields.ID, &id)
	_ = json.Unmarshal(fields.Name, &name)
	return id, name
}

// IsVisible reports whether the node is visible. Figma omits the field for visible nodes.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Color represents an RGBA color with float values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint represents a fill or stroke applied to a Figma node.
// It includes the paint type (SOLID, GRADIENT_LINEAR, etc.), visibility, opacity, and color information.
type Paint struct {
	Type          string         `json:"type"`
	Visible       *bool          `json:"visible,omitempty"`
	Opacity       *float64       `json:"opacity,omitempty"`
	Color         *Color         `json:"color,omitempty"`
	GradientStops []GradientStop `json:"gradientStops,omitempty"`
}

// IsVisible reports whether the paint is applied. Figma omits the field for visible paints.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// EffectiveOpacity returns the paint opacity, 1 when the API omitted it.
func (p Paint) EffectiveOpacity() float64 {
	if p.Opacity == nil {
		return 1
	}
	return *p.Opacity
}

// IsGradient reports whether the paint is one of the gradient paint types.
func (p Paint) IsGradient() bool {
	switch p.Type {
	case "GRADIENT_LINEAR", "GRADIENT_RADIAL", "GRADIENT_ANGULAR", "GRADIENT_DIAMOND":
		return true
	}
	return false
}

// GradientStop is a single color position along a gradient paint.
type GradientStop struct {
	Position float64 `json:"position"`
	Color    Color   `json:"color"`
}
