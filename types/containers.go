package types

// Checkpoint is the unit of justification/finalization accounting:
// a (root, slot) pair. Equality is structural.
type Checkpoint struct {
	Root Root `ssz-size:"32"`
	Slot Slot
}

// Equal reports whether c and other name the same checkpoint.
func (c Checkpoint) Equal(other Checkpoint) bool {
	return c.Root == other.Root && c.Slot == other.Slot
}

// Vote is a validator's declared chain view: a head, a voting target,
// and the source checkpoint the vote builds from.
type Vote struct {
	Slot   Slot
	Head   Checkpoint
	Target Checkpoint
	Source Checkpoint
}

// SignedVote pairs a Vote with the validator that cast it. Signatures
// are assumed pre-verified by an upstream collaborator; the core never
// inspects them.
type SignedVote struct {
	ValidatorID ValidatorIndex
	Message     Vote
}

// BlockHeader is the fixed-size, parent-linking portion of a block.
type BlockHeader struct {
	Slot          Slot
	ProposerIndex uint64
	ParentRoot    Root `ssz-size:"32"`
	StateRoot     Root `ssz-size:"32"`
	BodyRoot      Root `ssz-size:"32"`
}

// BlockBody holds a block's variable-length payload.
type BlockBody struct {
	Attestations []SignedVote `ssz-max:"4096"`
}

// Block is a consensus block: (slot, parent_root, state_root) plus its
// body. ParentRoot == ZeroRoot iff this is the anchor/genesis block.
type Block struct {
	Slot          Slot
	ProposerIndex uint64
	ParentRoot    Root `ssz-size:"32"`
	StateRoot     Root `ssz-size:"32"`
	Body          BlockBody
}

// State is the post-block state the core's injected transition
// function produces. The core only reads LatestJustified and
// LatestFinalized from it; everything else belongs to the external
// state-transition collaborator (package consensus).
type State struct {
	Config            Config
	Slot              Slot
	LatestBlockHeader BlockHeader

	LatestJustified Checkpoint
	LatestFinalized Checkpoint

	HistoricalBlockHashes   []Root `ssz-max:"262144"`
	JustifiedSlots          []byte `ssz:"bitlist" ssz-max:"262144"`
	JustificationRoots      []Root `ssz-max:"262144"`
	JustificationValidators []byte `ssz:"bitlist" ssz-max:"1073741824"`
}

// Copy returns a deep copy of s. State records are treated as
// immutable snapshots once inserted into a Store; every state
// transition step produces a fresh copy rather than mutating in place.
func (s *State) Copy() *State {
	cp := *s
	cp.HistoricalBlockHashes = append([]Root{}, s.HistoricalBlockHashes...)
	cp.JustifiedSlots = append([]byte{}, s.JustifiedSlots...)
	cp.JustificationRoots = append([]Root{}, s.JustificationRoots...)
	cp.JustificationValidators = append([]byte{}, s.JustificationValidators...)
	return &cp
}
