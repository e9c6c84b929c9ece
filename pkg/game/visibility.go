package game

import (
	"slices"

	"github.com/golangdaddy/citymap/pkg/drawmap"
	"github.com/golangdaddy/citymap/pkg/mapmodel"
	"github.com/golangdaddy/citymap/pkg/objects"
)

var _ drawmap.ShowObjects = (*Visibility)(nil)

// Visibility is what the viewer has switched on and off: whole kinds of
// object, and turn icons per intersection or everywhere.
type Visibility struct {
	hidden   map[objects.Kind]bool
	iconsAt  map[mapmodel.IntersectionID]bool
	allIcons bool
}

// NewVisibility shows everything and no turn icons.
func NewVisibility() *Visibility {
	return &Visibility{
		hidden:  make(map[objects.Kind]bool),
		iconsAt: make(map[mapmodel.IntersectionID]bool),
	}
}

func (v *Visibility) Show(id objects.ID) bool {
	return !v.hidden[id.Kind()]
}

func (v *Visibility) ShowIconsFor(i mapmodel.IntersectionID) bool {
	return v.allIcons || v.iconsAt[i]
}

// Toggle flips whether objects of kind k are drawn and reports the new state.
func (v *Visibility) Toggle(k objects.Kind) bool {
	v.hidden[k] = !v.hidden[k]
	return !v.hidden[k]
}

// ToggleIconsAt flips turn icons for one intersection.
func (v *Visibility) ToggleIconsAt(i mapmodel.IntersectionID) {
	if v.iconsAt[i] {
		delete(v.iconsAt, i)
		return
	}
	v.iconsAt[i] = true
}

// ToggleAllIcons flips turn icons everywhere.
func (v *Visibility) ToggleAllIcons() {
	v.allIcons = !v.allIcons
}

// HiddenKinds lists the kinds switched off, in order.
func (v *Visibility) HiddenKinds() []objects.Kind {
	var out []objects.Kind
	for k, hidden := range v.hidden {
		if hidden {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// IconIntersections lists the intersections showing turn icons, in order.
func (v *Visibility) IconIntersections() []mapmodel.IntersectionID {
	out := make([]mapmodel.IntersectionID, 0, len(v.iconsAt))
	for i := range v.iconsAt {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// AllIcons reports whether turn icons are on everywhere.
func (v *Visibility) AllIcons() bool {
	return v.allIcons
}
