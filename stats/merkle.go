package stats

import (
	"github.com/xsleonard/go-merkle"
	"golang.org/x/crypto/sha3"

	"github.com/jamzig/accumulate/types"
)

// binaryMerkleRoot computes a binary Merkle root over blobs using
// Keccak-256, the teacher's hash-of-choice for trie/commitment work.
// An empty blob set is defined as the all-zero root (spec.md §4.9
// "the Merkle root for an empty sequence") rather than calling into
// go-merkle, which requires at least one leaf.
func binaryMerkleRoot(blobs [][]byte) types.Hash {
	if len(blobs) == 0 {
		return types.Hash{}
	}

	tree := merkle.NewTreeWithHashStrategy(sha3.NewLegacyKeccak256)
	if err := tree.Generate(blobs, sha3.NewLegacyKeccak256()); err != nil {
		// Generate only fails on malformed input (empty blocks), which
		// the len check above already excludes.
		return types.Hash{}
	}

	var root types.Hash
	copy(root[:], tree.Root().Hash)
	return root
}
