package hostcall

// Memory is the minimal view onto the VM's shared argument buffer/memory
// a host call needs (spec.md §6: "invoke(... args_buffer ...)"). The VM
// itself is out of scope (spec.md §1); this interface is the seam a real
// VM implementation plugs into from the host-call side, mirroring how
// Invoker is the seam on the invocation side.
//
// Read returning ok=false or Write returning false models a memory fault,
// which the dispatch wrapper turns into a terminal panic exit (spec.md
// §4.5: "Memory faults raise a terminal panic").
type Memory interface {
	Read(ptr, length uint64) (data []byte, ok bool)
	Write(ptr uint64, data []byte) (ok bool)
}

// writePartial implements the "write preimage[off..off+min(lim,|p|-off)]"
// partial-read pattern shared by lookup/read/info (spec.md §4.5), and the
// limit==0 convention of returning the full length while writing nothing
// (spec.md §9 open question 4).
func writePartial(mem Memory, outPtr uint64, off, lim uint64, data []byte) (fullLen uint64, faulted bool) {
	fullLen = uint64(len(data))
	if off >= fullLen || lim == 0 {
		return fullLen, false
	}
	end := off + lim
	if end > fullLen {
		end = fullLen
	}
	if !mem.Write(outPtr, data[off:end]) {
		return fullLen, true
	}
	return fullLen, false
}
