package fbxview

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Node is one element of a parsed asset document: a name, ordered children
// and ordered properties.
type Node struct {
	Name       string     `json:"name"`
	Children   []*Node    `json:"children,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// Property holds a scalar, a string or an array value. Values decoded from
// JSON arrive as json.Number, string or []interface{}.
type Property struct {
	Type  string      `json:"type,omitempty"`
	Value interface{} `json:"value"`
}

func NewNode(name string, values ...interface{}) *Node {
	nd := &Node{Name: name}
	for _, v := range values {
		nd.Properties = append(nd.Properties, Property{Value: v})
	}
	return nd
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) Child(i int) (*Node, error) {
	if n == nil {
		return nil, errors.Wrap(ErrStructure, "nil node")
	}
	if i < 0 || i >= len(n.Children) || n.Children[i] == nil {
		return nil, errors.Wrapf(ErrStructure, "node %q has no child %d", n.Name, i)
	}
	return n.Children[i], nil
}

func (n *Node) Property(i int) (Property, error) {
	if n == nil {
		return Property{}, errors.Wrap(ErrStructure, "nil node")
	}
	if i < 0 || i >= len(n.Properties) {
		return Property{}, errors.Wrapf(ErrStructure, "node %q has no property %d", n.Name, i)
	}
	return n.Properties[i], nil
}

// FindChild returns the first direct child called name, or nil.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.Children {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

func (p Property) Float() (float64, error) {
	f, ok := toFloat(p.Value)
	if !ok {
		return 0, errors.Wrapf(ErrStructure, "property value %T is not a number", p.Value)
	}
	return f, nil
}

func (p Property) Text() (string, bool) {
	s, ok := p.Value.(string)
	return s, ok
}

func (p Property) Floats() ([]float64, error) {
	switch v := p.Value.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case []int:
		out := make([]float64, len(v))
		for i := range v {
			out[i] = float64(v[i])
		}
		return out, nil
	case []interface{}:
		out := make([]float64, len(v))
		for i := range v {
			f, ok := toFloat(v[i])
			if !ok {
				return nil, errors.Wrapf(ErrStructure, "array element %d is %T", i, v[i])
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrStructure, "property value %T is not a numeric array", p.Value)
}

func (p Property) Ints() ([]int, error) {
	switch v := p.Value.(type) {
	case []int:
		return append([]int(nil), v...), nil
	case []int32:
		out := make([]int, len(v))
		for i := range v {
			out[i] = int(v[i])
		}
		return out, nil
	}
	fs, err := p.Floats()
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return nil, errors.Wrapf(ErrStructure, "index %d = %v is not an integer", i, f)
		}
		out[i] = int(f)
	}
	return out, nil
}

func DecodeDocument(r io.Reader) (*Node, error) {
	root := &Node{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(root); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return root, nil
}

func ReadDocumentFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeDocument(f)
}

func EncodeDocument(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(root)
}
