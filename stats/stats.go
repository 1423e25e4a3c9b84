// Package stats implements the Statistics & Root pass (spec.md §4.9):
// per-service accumulation/transfer statistics and the block's
// accumulate_root Merkle commitment.
package stats

import (
	"encoding/binary"
	"sort"

	"github.com/jamzig/accumulate/types"
)

// AccumulationServiceStats is one service's per-block accumulation record.
type AccumulationServiceStats struct {
	GasUsed          types.Gas
	AccumulatedCount int
}

// TransferServiceStats is one destination's per-block transfer-dispatch
// record (transfer_stats in spec.md §4.8 step 3).
type TransferServiceStats struct {
	TransferCount int
	GasUsed       types.Gas
}

// Report is the full statistics output of one block's accumulation.
type Report struct {
	Accumulation map[types.ServiceId]AccumulationServiceStats
	Transfers    map[types.ServiceId]TransferServiceStats
	Root         types.Hash
}

// BuildAccumulationStats derives per-service AccumulationServiceStats from
// the outer loop's gas totals and the accumulated reports' result lists
// (spec.md §4.9: "accumulated_count is the number of WorkResult entries
// whose service_id matches ... counted as occurrences, not reports").
func BuildAccumulationStats(reports []types.WorkReport, gasUsedPerService map[types.ServiceId]types.Gas) map[types.ServiceId]AccumulationServiceStats {
	counts := make(map[types.ServiceId]int)
	for _, r := range reports {
		for _, res := range r.Results {
			counts[res.ServiceId]++
		}
	}

	out := make(map[types.ServiceId]AccumulationServiceStats, len(counts))
	seen := make(map[types.ServiceId]struct{}, len(counts)+len(gasUsedPerService))
	for id := range counts {
		seen[id] = struct{}{}
	}
	for id := range gasUsedPerService {
		seen[id] = struct{}{}
	}
	for id := range seen {
		out[id] = AccumulationServiceStats{
			GasUsed:          gasUsedPerService[id],
			AccumulatedCount: counts[id],
		}
	}
	return out
}

// AccumulateRoot computes binaryMerkleRoot(blobs, Keccak256) over outputs
// sorted by (service_id asc, output asc), blob = le32(service_id) ||
// output_bytes (spec.md §4.9). An empty set yields the empty-sequence root.
func AccumulateRoot(outputs []types.ServiceAccumulationOutput) types.Hash {
	sorted := make([]types.ServiceAccumulationOutput, len(outputs))
	copy(sorted, outputs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ServiceId != sorted[j].ServiceId {
			return sorted[i].ServiceId < sorted[j].ServiceId
		}
		return bytesLess(sorted[i].Output[:], sorted[j].Output[:])
	})

	blobs := make([][]byte, len(sorted))
	for i, o := range sorted {
		blob := make([]byte, 4+len(o.Output))
		binary.LittleEndian.PutUint32(blob[:4], uint32(o.ServiceId))
		copy(blob[4:], o.Output[:])
		blobs[i] = blob
	}

	return binaryMerkleRoot(blobs)
}

func bytesLess(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
