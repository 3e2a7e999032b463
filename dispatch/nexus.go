package dispatch

// Nexus is the pre-computed local/remote neighbour topology the 3H
// dispatcher routes against (spec §3's Nexus entity): a partition of the
// world into nodes plus one stable representative rank per node. A rank's
// representative never changes mid-epoch, per the Nexus invariant.
type Nexus struct {
	nodeOf         []int // nodeOf[rank] = node id
	representative map[int]int
}

// NewNexus partitions a world of len(nodeOf) ranks by the given node
// assignment and elects, deterministically, the lowest-ranked member of
// each node as that node's representative — stable for as long as nodeOf
// itself does not change, which spec §3 requires for the lifetime of an
// epoch.
func NewNexus(nodeOf []int) *Nexus {
	reps := make(map[int]int)
	for rank, node := range nodeOf {
		cur, ok := reps[node]
		if !ok || rank < cur {
			reps[node] = rank
		}
	}
	return &Nexus{nodeOf: append([]int(nil), nodeOf...), representative: reps}
}

// EvenNexus builds a Nexus that spreads worldSize ranks evenly across
// nodeCount nodes, matching the "O(sqrt(N)) connections" sizing named in
// spec §4.5 when nodeCount ~= sqrt(worldSize).
func EvenNexus(worldSize, nodeCount int) *Nexus {
	if nodeCount <= 0 {
		nodeCount = 1
	}
	nodeOf := make([]int, worldSize)
	perNode := (worldSize + nodeCount - 1) / nodeCount
	for rank := range nodeOf {
		nodeOf[rank] = rank / perNode
	}
	return NewNexus(nodeOf)
}

// Node returns the node id a rank belongs to.
func (n *Nexus) Node(rank int) int { return n.nodeOf[rank] }

// Representative returns the representative rank for the node that rank
// belongs to.
func (n *Nexus) Representative(rank int) int { return n.representative[n.Node(rank)] }

// RepresentativeForNode returns the representative rank of the given node.
func (n *Nexus) RepresentativeForNode(node int) int { return n.representative[node] }

// SameNode reports whether a and b belong to the same node.
func (n *Nexus) SameNode(a, b int) bool { return n.Node(a) == n.Node(b) }
