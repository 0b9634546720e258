package fbxview

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Pairing decides which Geometry each Model places. Pair returns, for every
// model, the index into geoms it applies to, or -1 to drop the placement.
type Pairing interface {
	Pair(root *Node, geoms []Geometry, models []Model) ([]int, error)
}

// CounterPairing pairs the k-th Model with the k-th Geometry. The Geometry
// must come before its Model in document order.
type CounterPairing struct{}

func (CounterPairing) Pair(_ *Node, geoms []Geometry, models []Model) ([]int, error) {
	targets := make([]int, len(models))
	for k, m := range models {
		if k >= len(geoms) || geoms[k].Pos > m.Pos {
			return nil, errors.Wrapf(ErrStructure, "model at %d has no pending geometry", m.Pos)
		}
		targets[k] = k
	}
	return targets, nil
}

// IDPairing pairs through the object ids (first property of each object)
// and the "OO" links of the Connections node. Models without a connected
// geometry are dropped.
type IDPairing struct{}

func (IDPairing) Pair(root *Node, geoms []Geometry, models []Model) ([]int, error) {
	conns := root.FindChild(NodeConnections)
	if conns == nil {
		var err error
		if conns, err = root.Child(ConnectionsIndex); err != nil {
			return nil, errors.Wrap(err, "connections")
		}
	}

	parents := make(map[string][]string)
	for _, c := range conns.Children {
		if c == nil || len(c.Properties) < 3 {
			continue
		}
		if kind, _ := c.Properties[0].Text(); kind != "OO" {
			continue
		}
		child, ok1 := propertyID(c.Properties[1])
		parent, ok2 := propertyID(c.Properties[2])
		if ok1 && ok2 {
			parents[child] = append(parents[child], parent)
		}
	}

	geomOf := make(map[string]int)
	for gi, g := range geoms {
		id, ok := objectID(g.Node)
		if !ok {
			continue
		}
		for _, p := range parents[id] {
			geomOf[p] = gi
		}
	}

	targets := make([]int, len(models))
	for k, m := range models {
		targets[k] = -1
		id, ok := objectID(m.Node)
		if !ok {
			logger.Debug("model without id", "pos", m.Pos)
			continue
		}
		if gi, ok := geomOf[id]; ok {
			targets[k] = gi
		} else {
			logger.Debug("model without geometry", "pos", m.Pos, "id", id)
		}
	}
	return targets, nil
}

func objectID(n *Node) (string, bool) {
	if n == nil || len(n.Properties) == 0 {
		return "", false
	}
	return propertyID(n.Properties[0])
}

func propertyID(p Property) (string, bool) {
	switch v := p.Value.(type) {
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// PairingFor maps a configuration name to a strategy.
func PairingFor(name string) (Pairing, error) {
	switch name {
	case "", "counter":
		return CounterPairing{}, nil
	case "id":
		return IDPairing{}, nil
	}
	return nil, errors.Wrapf(ErrValue, "unknown pairing %q", name)
}
