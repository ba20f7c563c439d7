package consensus

import (
	"math"
	"sort"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/devylongs/leanchoice/types"
)

// IsJustifiableAfter reports whether slot is a valid justification
// candidate given the current finalized slot. A slot is justifiable if
// its distance from finalizedSlot is at most 5, a perfect square, or a
// pronic number (x*(x+1)); the predicate funnels votes toward fewer
// candidate targets, which helps the chain actually reach finality.
//
// spec.md leaves the real predicate to an external collaborator; this
// is this repo's concrete stand-in so the demo and tests have
// something to run against.
func IsJustifiableAfter(slot, finalizedSlot types.Slot) bool {
	if slot < finalizedSlot {
		return false
	}
	delta := int64(slot - finalizedSlot)
	if delta <= 5 {
		return true
	}
	if sq := isqrt(delta); sq*sq == delta {
		return true
	}
	v := 4*delta + 1
	sqv := isqrt(v)
	return sqv*sqv == v && sqv%2 == 1
}

func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := int64(math.Sqrt(float64(n)))
	for x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}

// GetJustifications reconstructs the root -> per-validator vote slice
// map from the state's flattened bitlist encoding.
func GetJustifications(s *types.State) map[types.Root][]bool {
	justifications := make(map[types.Root][]bool)
	if len(s.JustificationRoots) == 0 {
		return justifications
	}

	numValidators := int(s.Config.NumValidators)
	flat := bitfield.Bitlist(s.JustificationValidators)

	for i, root := range s.JustificationRoots {
		start := i * numValidators
		votes := make([]bool, numValidators)
		for j := 0; j < numValidators; j++ {
			idx := uint64(start + j)
			if idx < flat.Len() {
				votes[j] = flat.BitAt(idx)
			}
		}
		justifications[root] = votes
	}
	return justifications
}

// SetJustifications flattens justifications back into s's SSZ-friendly
// encoding, sorting roots for deterministic output.
func SetJustifications(s *types.State, justifications map[types.Root][]bool) *types.State {
	next := s.Copy()

	if len(justifications) == 0 {
		next.JustificationRoots = []types.Root{}
		next.JustificationValidators = bitfield.NewBitlist(1)
		return next
	}

	roots := make([]types.Root, 0, len(justifications))
	for root := range justifications {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Compare(roots[j]) < 0 })

	numValidators := int(s.Config.NumValidators)
	flat := bitfield.NewBitlist(uint64(len(roots) * numValidators))
	for i, root := range roots {
		for j, voted := range justifications[root] {
			if voted {
				flat.SetBitAt(uint64(i*numValidators+j), true)
			}
		}
	}

	next.JustificationRoots = roots
	next.JustificationValidators = flat
	return next
}

// CountVotes counts the true entries in a per-validator vote slice.
func CountVotes(votes []bool) int {
	count := 0
	for _, v := range votes {
		if v {
			count++
		}
	}
	return count
}
