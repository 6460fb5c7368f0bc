// Package seqmodel implements the trainable next-token model: an embedding
// feeding stacked gated recurrent layers and a softmax projection over the
// vocabulary, trained with categorical cross-entropy and Adam.
package seqmodel

import "math"

// value is a node in a small reverse-mode autodiff graph. Data carries the
// forward result, Grad accumulates d(loss)/d(node) during Backward, and
// localGrads holds the derivative of this node with respect to each child.
type value struct {
	Data       float64
	Grad       float64
	children   []*value
	localGrads []float64
}

func newValue(data float64) *value {
	return &value{Data: data}
}

func (v *value) Add(other *value) *value {
	return &value{
		Data:       v.Data + other.Data,
		children:   []*value{v, other},
		localGrads: []float64{1, 1},
	}
}

func (v *value) Mul(other *value) *value {
	return &value{
		Data:       v.Data * other.Data,
		children:   []*value{v, other},
		localGrads: []float64{other.Data, v.Data},
	}
}

// AddConst and MulConst fold plain scalars into the graph without creating
// leaf nodes for them.
func (v *value) AddConst(c float64) *value {
	return &value{
		Data:       v.Data + c,
		children:   []*value{v},
		localGrads: []float64{1},
	}
}

func (v *value) MulConst(c float64) *value {
	return &value{
		Data:       v.Data * c,
		children:   []*value{v},
		localGrads: []float64{c},
	}
}

func (v *value) Log() *value {
	return &value{
		Data:       math.Log(v.Data),
		children:   []*value{v},
		localGrads: []float64{1 / v.Data},
	}
}

func (v *value) Exp() *value {
	exp := math.Exp(v.Data)
	return &value{
		Data:       exp,
		children:   []*value{v},
		localGrads: []float64{exp},
	}
}

func (v *value) Pow(power float64) *value {
	return &value{
		Data:       math.Pow(v.Data, power),
		children:   []*value{v},
		localGrads: []float64{power * math.Pow(v.Data, power-1)},
	}
}

// Tanh and Sigmoid are the gate activations of the recurrent cells.
func (v *value) Tanh() *value {
	t := math.Tanh(v.Data)
	return &value{
		Data:       t,
		children:   []*value{v},
		localGrads: []float64{1 - t*t},
	}
}

func (v *value) Sigmoid() *value {
	s := 1 / (1 + math.Exp(-v.Data))
	return &value{
		Data:       s,
		children:   []*value{v},
		localGrads: []float64{s * (1 - s)},
	}
}

// Backward runs reverse-mode autodiff from this node: build a topological
// order so each node is visited after everything that depends on it, seed
// the output gradient with 1, then push gradients to children with the
// chain rule. Parameter gradients accumulate across calls until reset.
func (v *value) Backward() {
	var topo []*value
	visited := make(map[*value]bool)

	var buildTopo func(*value)
	buildTopo = func(node *value) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, child := range node.children {
			buildTopo(child)
		}
		topo = append(topo, node)
	}
	buildTopo(v)

	v.Grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		curr := topo[i]
		for j, child := range curr.children {
			child.Grad += curr.localGrads[j] * curr.Grad
		}
	}
}
