package patch

import (
	"fmt"

	"github.com/gridflow/patch/backend"
	"github.com/gridflow/patch/geom"
)

// CopyInto copies field values from this patch into the target wherever
// their index spaces overlap. The two patches must have the same number
// of fields but need not cover the same region; cells of the target
// outside the overlap are untouched. Storage is migrated from host to
// device, device to host, or between devices as needed, and only the
// overlap ever crosses a residency boundary. Panics if the field counts
// differ or the index spaces do not overlap at all; an explicit copy is
// assumed purposeful.
func (p *Patch) CopyInto(target *Patch) {
	if p.numFields != target.numFields {
		panic(fmt.Sprintf("patch: copy between field counts %d and %d",
			p.numFields, target.numFields))
	}

	overlap, ok := p.Space().Intersect(target.Space())
	if !ok {
		panic(fmt.Sprintf("patch: copy between non-overlapping spaces %v and %v",
			p.Space(), target.Space()))
	}
	srcReg := overlap.MemRegionIn(p.Space())
	dstReg := overlap.MemRegionIn(target.Space())
	nq := p.numFields

	// Residency mismatch, including two distinct devices: extract the
	// overlap, migrate that minimal patch onto the target's residency,
	// and retry with matched storage. The staged copy is released as soon
	// as the retry lands.
	srcDev, srcOnDevice := p.Device()
	dstDev, dstOnDevice := target.Device()
	if srcOnDevice != dstOnDevice || (srcOnDevice && srcDev != dstDev) {
		var where *backend.Device
		if dstOnDevice {
			where = &dstDev
		}
		staged := p.Extract(overlap).On(where)
		staged.CopyInto(target)
		staged.release()
		return
	}

	switch src := p.data.(type) {
	case hostBuffer:
		dst := target.data.(hostBuffer)
		copyHostRegions(dst, src, dstReg, srcReg, nq)

	case deviceBuffer:
		dst := target.data.(deviceBuffer)
		if srcReg.Count != dstReg.Count {
			panic(fmt.Sprintf("patch: mismatched transfer shapes %v and %v",
				srcReg.Count, dstReg.Count))
		}
		dst.buf.CopyFrom(src.buf,
			[3]int64{srcReg.Start[0], srcReg.Start[1], 0},
			[3]int64{srcReg.Shape[0], srcReg.Shape[1], 1},
			[3]int64{dstReg.Start[0], dstReg.Start[1], 0},
			[3]int64{dstReg.Shape[0], dstReg.Shape[1], 1},
			[3]int64{srcReg.Count[0], srcReg.Count[1], 1},
			nq)
	}
}

// copyHostRegions walks the two memory regions in lockstep, one row of
// the outer axis at a time. A row is Count[1] contiguous zones on each
// side, so each step is a single contiguous copy of Count[1]*nq
// elements despite the differing container strides.
func copyHostRegions(dst, src []float64, dstReg, srcReg geom.MemRegion, nq int) {
	row := int(srcReg.Count[1]) * nq
	for a := int64(0); a < srcReg.Count[0]; a++ {
		so := int(srcReg.RowZone(a)) * nq
		do := int(dstReg.RowZone(a)) * nq
		copy(dst[do:do+row], src[so:so+row])
	}
}
