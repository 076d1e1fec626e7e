package patch

import (
	"fmt"

	"github.com/gridflow/patch/geom"
)

// View is a host-contiguous snapshot of one patch: its rectangle, field
// count and data in the fixed iteration order. It is the exchange form a
// higher-level checkpoint writer serializes and a loader hands back to
// FromView; this package defines no on-disk format.
type View struct {
	Rect      geom.Rectangle
	NumFields int
	Data      []float64
}

// HostView returns a snapshot of the patch. Device-resident data is
// downloaded; the returned slice never aliases the patch storage.
func (p *Patch) HostView() View {
	data := make([]float64, p.Len())
	switch src := p.data.(type) {
	case hostBuffer:
		copy(data, src)
	case deviceBuffer:
		src.buf.Download(0, data)
	}
	return View{Rect: p.rect, NumFields: p.numFields, Data: data}
}

// FromView reconstructs a host-resident patch from a snapshot. Unlike
// the in-process constructors, a malformed view is a data error, not a
// programmer fault: checkpoint contents arrive from outside this
// process.
func FromView(v View) (*Patch, error) {
	if v.NumFields <= 0 {
		return nil, fmt.Errorf("patch: view with non-positive field count %d", v.NumFields)
	}
	space := geom.Space(v.Rect)
	if want := space.Len() * v.NumFields; len(v.Data) != want {
		return nil, fmt.Errorf("patch: view data length %d, want %d for %v with %d fields",
			len(v.Data), want, v.Rect, v.NumFields)
	}

	data := make(hostBuffer, len(v.Data))
	copy(data, v.Data)
	return &Patch{rect: v.Rect, numFields: v.NumFields, data: data}, nil
}
