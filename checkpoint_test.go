package patch

import (
	"testing"

	"github.com/gridflow/patch/backend"
	"github.com/gridflow/patch/geom"
)

func TestHostViewRoundTrip(t *testing.T) {
	space := geom.Range2(-4, 4, 0, 6)
	p := FromSliceFunction(space, 2, func(i, j int64, zone []float64) {
		zone[0] = float64(i) * 0.25
		zone[1] = float64(j) - 0.5
	})

	v := p.HostView()
	if v.Rect != p.Rect() || v.NumFields != 2 {
		t.Fatalf("view header = %v/%d", v.Rect, v.NumFields)
	}

	q, err := FromView(v)
	if err != nil {
		t.Fatal(err)
	}
	pd, _ := p.AsSlice()
	qd, _ := q.AsSlice()
	for k := range pd {
		if qd[k] != pd[k] {
			t.Fatalf("element %d = %v, want %v", k, qd[k], pd[k])
		}
	}
}

func TestHostViewDoesNotAliasStorage(t *testing.T) {
	p := Zeros(1, geom.Range2(0, 4, 0, 4))
	v := p.HostView()

	v.Data[0] = 42
	if got := p.ZoneAt(0, 0)[0]; got != 0 {
		t.Errorf("mutating the view changed the patch: %v", got)
	}
}

func TestHostViewFromDevice(t *testing.T) {
	for _, device := range backend.Devices() {
		t.Run(device.String(), func(t *testing.T) {
			space := geom.Range2(0, 10, 0, 10)
			host := FromScalarFunction(space, func(i, j int64) float64 {
				return float64(i*10 + j)
			})
			v := host.ToDevice(device).HostView()

			want, _ := host.AsSlice()
			for k := range want {
				if v.Data[k] != want[k] {
					t.Fatalf("element %d = %v, want %v", k, v.Data[k], want[k])
				}
			}
		})
	}
}

func TestFromViewRejectsMalformedViews(t *testing.T) {
	tests := []struct {
		name string
		view View
	}{
		{"short data", View{Rect: geom.Rectangle{I0: 0, I1: 4, J0: 0, J1: 4}, NumFields: 2, Data: make([]float64, 3)}},
		{"long data", View{Rect: geom.Rectangle{I0: 0, I1: 2, J0: 0, J1: 2}, NumFields: 1, Data: make([]float64, 5)}},
		{"zero fields", View{Rect: geom.Rectangle{I0: 0, I1: 2, J0: 0, J1: 2}, NumFields: 0, Data: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromView(tt.view); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
