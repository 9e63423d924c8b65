package model

const leafNode = -1

// Tree is a binary decision tree in the flat array form scikit-learn uses.
// Node i tests x[Feature[i]] <= Threshold[i] and continues at ChildrenLeft[i]
// when true, ChildrenRight[i] otherwise; leaves have both children set to -1.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) init(nFeatures, width int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return invalid("tree: no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return invalid("tree: node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode || right == leafNode {
			if left != right {
				return invalid("tree: node %d has a single child", i)
			}
			if len(t.Value[i]) != width {
				return invalid("tree: leaf %d holds %d values, want %d", i, len(t.Value[i]), width)
			}
			continue
		}
		// Children always follow their parent, which rules out cycles.
		if left <= i || right <= i || left >= n || right >= n {
			return invalid("tree: node %d has out of order children %d/%d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return invalid("tree: node %d splits on feature %d of %d", i, t.Feature[i], nFeatures)
		}
	}

	return nil
}

func (t *Tree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// classOne returns P(class=1) from the leaf's class counts or fractions.
func (t *Tree) classOne(x []float64) float64 {
	v := t.leaf(x)
	total := v[0] + v[1]
	if total <= 0 {
		return 0
	}
	return v[1] / total
}
