package dispatch

// MaxHops bounds the number of hops nexusRouter.nextHop can ever take to
// converge from any sender to any destination: sender -> local
// representative -> remote representative -> receiver, with any hop elided
// along the way. Proven by TestNexusRouterHopBound. DrainEpochEnd relies on
// this bound to know how many full epoch_end passes are enough to fully
// drain a forwarding topology.
const MaxHops = 3

// hopRouter decides the immediate next-hop rank a frame bound for finalDst
// should be posted to next, given the rank currently holding it (self).
// NN's router is the trivial identity (always one hop); 3H's router
// implements the representative-chain rule of spec §4.5.
type hopRouter interface {
	nextHop(self, finalDst int) int
}

// identityRouter makes NN a degenerate case of the same engine: every
// write is exactly one hop, straight to the final destination.
type identityRouter struct{}

func (identityRouter) nextHop(_, finalDst int) int { return finalDst }

// nexusRouter implements the three-hop routing decision of spec §4.5:
// sender -> local representative -> remote representative -> receiver,
// with any hop elided when self already equals the next hop's identity.
// Applying it again at each forwarding rank converges in at most three
// evaluations, because the second evaluation (at a local or remote
// representative) always finds itself already on one of the two relevant
// nodes.
type nexusRouter struct {
	nexus *Nexus
}

func (r nexusRouter) nextHop(self, finalDst int) int {
	if finalDst == self {
		return self
	}
	if r.nexus.SameNode(self, finalDst) {
		// H1 elided (sender) or H3 (representative already on dst's node):
		// post directly, one hop from here.
		return finalDst
	}
	localRep := r.nexus.Representative(self)
	if self == localRep {
		// H1 elided: self is already its node's representative, so the
		// very next hop is straight to the destination node's
		// representative (H2).
		return r.nexus.RepresentativeForNode(r.nexus.Node(finalDst))
	}
	// H1: hand off to this node's representative.
	return localRep
}
