package forkchoice

import "github.com/devylongs/leanchoice/types"

// FindHead implements the weighted-vote tree-traversal algorithm
// (LMD-GHOST): the canonical descendant of startRoot under votes, with
// a child only eligible once its accumulated vote weight reaches
// minScore. FindHead is pure: it never mutates blocks or votes, and
// identical inputs yield an identical result across runs.
//
// If startRoot is ZeroRoot, the lowest-slot block in blocks is
// substituted (lexicographic tie-break on root) — used only during
// bootstrap, when there is no justified checkpoint yet to anchor on.
func FindHead(blocks map[types.Root]*types.Block, startRoot types.Root, votes map[types.ValidatorIndex]types.Checkpoint, minScore int) (types.Root, error) {
	root := startRoot
	if root.IsZero() {
		var err error
		root, err = lowestSlotRoot(blocks)
		if err != nil {
			return types.ZeroRoot, err
		}
	} else if _, ok := blocks[root]; !ok {
		return types.ZeroRoot, ErrUnknownStart
	}

	rootSlot := blocks[root].Slot
	weight := make(map[types.Root]int)

	for _, vote := range votes {
		if _, ok := blocks[vote.Root]; !ok {
			continue
		}
		current := vote.Root
		for blocks[current].Slot > rootSlot {
			weight[current]++
			current = blocks[current].ParentRoot
		}
	}

	children := make(map[types.Root][]types.Root)
	for hash, block := range blocks {
		if block.ParentRoot.IsZero() {
			continue
		}
		if weight[hash] >= minScore {
			children[block.ParentRoot] = append(children[block.ParentRoot], hash)
		}
	}

	current := root
	for {
		kids := children[current]
		if len(kids) == 0 {
			return current, nil
		}

		best := kids[0]
		for _, child := range kids[1:] {
			if betterChild(child, best, blocks, weight) {
				best = child
			}
		}
		current = best
	}
}

// betterChild reports whether candidate beats incumbent under the
// tie-break order: highest vote weight, then highest slot, then
// lexicographically greatest root.
func betterChild(candidate, incumbent types.Root, blocks map[types.Root]*types.Block, weight map[types.Root]int) bool {
	cw, iw := weight[candidate], weight[incumbent]
	if cw != iw {
		return cw > iw
	}
	cs, is := blocks[candidate].Slot, blocks[incumbent].Slot
	if cs != is {
		return cs > is
	}
	return candidate.Compare(incumbent) > 0
}

func lowestSlotRoot(blocks map[types.Root]*types.Block) (types.Root, error) {
	if len(blocks) == 0 {
		return types.ZeroRoot, ErrEmptyBlockSet
	}
	var best types.Root
	var bestSlot types.Slot
	first := true
	for hash, block := range blocks {
		if first || block.Slot < bestSlot || (block.Slot == bestSlot && hash.Compare(best) < 0) {
			best, bestSlot, first = hash, block.Slot, false
		}
	}
	return best, nil
}
