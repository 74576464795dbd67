package figma

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeUnmarshalLenientChildren(t *testing.T) {
	data := `{
	  "id": "1:1", "name": "Root", "type": "FRAME",
	  "children": [
	    {"id": "2:1", "name": "Q", "type": "RECTANGLE",
	     "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0, "a": 1}}]},
	    "not a node",
	    {"id": "2:3", "name": "Broken", "type": "FRAME", "children": {"oops": true}}
	  ]
	}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	assert.Empty(t, n.Malformed)
	require.Len(t, n.Children, 3)

	q := n.Children[0]
	assert.Equal(t, "Q", q.Name)
	require.Len(t, q.Fills, 1)
	assert.True(t, q.Fills[0].IsVisible())
	assert.Equal(t, 1.0, q.Fills[0].EffectiveOpacity())

	assert.Contains(t, n.Children[1].Malformed, "undecodable node")

	broken := n.Children[2]
	assert.Equal(t, "Broken", broken.Name)
	assert.Equal(t, "children is not a list", broken.Malformed)
	assert.Nil(t, broken.Children)
}

func TestNodeUnmarshalKeepsIdentityOfBrokenChild(t *testing.T) {
	data := `{"id": "1:1", "name": "Root", "children": [
	  {"id": "3:9", "name": 5, "type": "RECTANGLE"},
	  {"id": 7, "name": "Q", "fills": "red"},
	  42
	]}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	require.Len(t, n.Children, 3)

	tests := []struct {
		id, name string
	}{
		{id: "3:9"},
		{name: "Q"},
		{},
	}
	for i, tt := range tests {
		child := n.Children[i]
		assert.Equal(t, tt.id, child.ID, "child %d", i)
		assert.Equal(t, tt.name, child.Name, "child %d", i)
		assert.Contains(t, child.Malformed, "undecodable node", "child %d", i)
	}
}

func TestNodeUnmarshalRootMustBeObject(t *testing.T) {
	var n Node
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &n))
}

func TestPaintDefaults(t *testing.T) {
	var p Paint
	require.NoError(t, json.Unmarshal([]byte(`{"type":"GRADIENT_RADIAL","visible":false,"opacity":0.5}`), &p))
	assert.False(t, p.IsVisible())
	assert.True(t, p.IsGradient())
	assert.Equal(t, 0.5, p.EffectiveOpacity())
}
