package hnsw

// node is a single HNSW graph vertex. neighbors[l] holds the set of node
// ids linked at layer l, for l in [0, layer].
type node struct {
	id        uint64
	vector    []float32
	layer     int
	neighbors []map[uint64]struct{}
}

func newNode(id uint64, vector []float32, layer int) *node {
	n := &node{
		id:        id,
		vector:    vector,
		layer:     layer,
		neighbors: make([]map[uint64]struct{}, layer+1),
	}
	for l := range n.neighbors {
		n.neighbors[l] = make(map[uint64]struct{})
	}
	return n
}

func (n *node) neighborIDs(layer int) []uint64 {
	m := n.neighbors[layer]
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

func (n *node) addNeighbor(layer int, id uint64) {
	n.neighbors[layer][id] = struct{}{}
}

func (n *node) removeNeighbor(layer int, id uint64) {
	delete(n.neighbors[layer], id)
}

func (n *node) setNeighbors(layer int, ids []uint64) {
	m := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	n.neighbors[layer] = m
}
