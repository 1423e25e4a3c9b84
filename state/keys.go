package state

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/jamzig/accumulate/types"
)

// StorageKey constructs the 31-byte structured storage key for (service,
// rawKey), per spec.md §6: "31-byte patterns of (service_id bytes
// interleaved with markers, hash bytes)". The service id's four
// little-endian bytes are interleaved with the first four bytes of
// blake2b-256(rawKey); the next 23 hash bytes (h[4:27]) fill out the
// remaining 23 bytes of the 31-byte key, and the last 5 hash bytes are
// dropped.
func StorageKey(service types.ServiceId, rawKey []byte) [31]byte {
	h := blake2b.Sum256(rawKey)

	var sid [4]byte
	binary.LittleEndian.PutUint32(sid[:], uint32(service))

	var out [31]byte
	for i := 0; i < 4; i++ {
		out[2*i] = sid[i]
		out[2*i+1] = h[i]
	}
	copy(out[8:], h[4:4+23])
	return out
}

// PreimageKey constructs the 31-byte structured preimage key for
// (service, preimageHash). Preimages are content-addressed, so the hash
// dominates the key; the service id is still folded in (via the same
// interleave as StorageKey) so that two services soliciting the same
// preimage bytes do not alias each other's preimage_lookups entries.
func PreimageKey(service types.ServiceId, preimageHash types.Hash) [31]byte {
	return StorageKey(service, preimageHash[:])
}
