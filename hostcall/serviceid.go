package hostcall

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/jamzig/accumulate/types"
)

// serviceIDFloor is the lowest candidate id the generator ever produces;
// ids below it are reserved (spec.md §4.5).
const serviceIDFloor = 0x100

// serviceIDSpan is 2^32 - 2^9, the modulus the candidate id and its
// retry sequence are taken over (spec.md §4.5).
const serviceIDSpan = uint64(1)<<32 - uint64(1)<<9

// CandidateServiceID derives the deterministic candidate id for a new
// service created by creator at timeslot, retrying via the documented
// linear probe while taken returns true (spec.md §4.5 "Candidate service
// id generation").
func CandidateServiceID(creator types.ServiceId, entropy [32]byte, timeslot types.TimeSlot, taken func(types.ServiceId) bool) types.ServiceId {
	candidate := types.ServiceId(serviceIDFloor + (seed(creator, entropy, timeslot) % serviceIDSpan))
	for taken(candidate) {
		offset := uint64(candidate) - serviceIDFloor
		offset = (offset + 1) % serviceIDSpan
		candidate = types.ServiceId(serviceIDFloor + offset)
	}
	return candidate
}

// seed hashes le32(creator) || entropy(32) || le32(timeslot) with
// blake2b-256 and returns the first four bytes as a little-endian u32.
func seed(creator types.ServiceId, entropy [32]byte, timeslot types.TimeSlot) uint64 {
	buf := make([]byte, 4+32+4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(creator))
	copy(buf[4:36], entropy[:])
	binary.LittleEndian.PutUint32(buf[36:40], uint32(timeslot))

	h := blake2b.Sum256(buf)
	return uint64(binary.LittleEndian.Uint32(h[:4]))
}
