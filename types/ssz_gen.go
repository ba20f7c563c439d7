package types

import (
	ssz "github.com/ferranbt/fastssz"
)

// Hash-tree-root implementations below follow the shape sszgen would
// produce for the containers in containers.go (see the go:generate
// directive below). They are hand-written because the generator
// itself is not run as part of this build, but the core never calls
// them: per the fork-choice contract, callers hash blocks externally
// and hand the resulting root to OnBlock. Only the state-transition
// collaborator (consensus) and the validator and node layers, which
// build and label candidate blocks, exercise this file.

//go:generate go run github.com/ferranbt/fastssz/sszgen --path=. --objs=Checkpoint,BlockHeader,BlockBody,Block,State

const (
	historicalRootsLimit   = 262144
	validatorRegistryLimit = 4096
	justificationBitsLimit = historicalRootsLimit * validatorRegistryLimit
)

// HashTreeRoot computes the SSZ merkle root of c.
func (c *Checkpoint) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(c)
}

// HashTreeRootWith ssz hashes c with a pooled Hasher.
func (c *Checkpoint) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(c.Root[:])
	hh.PutUint64(uint64(c.Slot))
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the SSZ merkle root of h.
func (h *BlockHeader) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(h)
}

// HashTreeRootWith ssz hashes h with a pooled Hasher.
func (h *BlockHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(h.Slot))
	hh.PutUint64(h.ProposerIndex)
	hh.PutBytes(h.ParentRoot[:])
	hh.PutBytes(h.StateRoot[:])
	hh.PutBytes(h.BodyRoot[:])
	hh.Merkleize(indx)
	return nil
}

func (v *Vote) hashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(v.Slot))
	if err := v.Head.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := v.Target.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := v.Source.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

func (sv *SignedVote) hashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(sv.ValidatorID))
	if err := sv.Message.hashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the SSZ merkle root of b.
func (b *BlockBody) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes b with a pooled Hasher.
func (b *BlockBody) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	{
		subIndx := hh.Index()
		num := uint64(len(b.Attestations))
		if num > validatorRegistryLimit {
			return ssz.ErrListTooBig
		}
		for _, a := range b.Attestations {
			a := a
			if err := a.hashTreeRootWith(hh); err != nil {
				return err
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, validatorRegistryLimit)
	}
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the SSZ merkle root of b.
func (b *Block) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(b)
}

// HashTreeRootWith ssz hashes b with a pooled Hasher.
func (b *Block) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(uint64(b.Slot))
	hh.PutUint64(b.ProposerIndex)
	hh.PutBytes(b.ParentRoot[:])
	hh.PutBytes(b.StateRoot[:])
	if err := b.Body.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

func (c *Config) hashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint64(c.NumValidators)
	hh.PutUint64(c.GenesisTime)
	hh.PutUint64(c.SecondsPerSlot)
	hh.PutUint64(c.IntervalsPerSlot)
	hh.Merkleize(indx)
	return nil
}

// HashTreeRoot computes the SSZ merkle root of s.
func (s *State) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz hashes s with a pooled Hasher.
func (s *State) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()

	if err := s.Config.hashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutUint64(uint64(s.Slot))
	if err := s.LatestBlockHeader.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := s.LatestJustified.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := s.LatestFinalized.HashTreeRootWith(hh); err != nil {
		return err
	}

	{
		subIndx := hh.Index()
		num := uint64(len(s.HistoricalBlockHashes))
		if num > historicalRootsLimit {
			return ssz.ErrListTooBig
		}
		for _, r := range s.HistoricalBlockHashes {
			hh.Append(r[:])
		}
		hh.FillUpTo32()
		hh.MerkleizeWithMixin(subIndx, num, historicalRootsLimit)
	}

	if len(s.JustifiedSlots) == 0 {
		hh.PutBitlist(nil, historicalRootsLimit)
	} else {
		hh.PutBitlist(s.JustifiedSlots, historicalRootsLimit)
	}

	{
		subIndx := hh.Index()
		num := uint64(len(s.JustificationRoots))
		if num > historicalRootsLimit {
			return ssz.ErrListTooBig
		}
		for _, r := range s.JustificationRoots {
			hh.Append(r[:])
		}
		hh.FillUpTo32()
		hh.MerkleizeWithMixin(subIndx, num, historicalRootsLimit)
	}

	if len(s.JustificationValidators) == 0 {
		hh.PutBitlist(nil, justificationBitsLimit)
	} else {
		hh.PutBitlist(s.JustificationValidators, justificationBitsLimit)
	}

	hh.Merkleize(indx)
	return nil
}
