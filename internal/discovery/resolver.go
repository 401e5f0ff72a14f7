package discovery

import (
	"strconv"
	"strings"
)

// DownstreamResolver decides whether a device hangs below a candidate
// parent. Two implementations exist: the explicit parent link when the host
// supplies one (authoritative), and a bus-number comparison otherwise.
type DownstreamResolver interface {
	IsDownstreamOf(dev, parent Device) bool
}

// resolverFor selects by data availability: explicit linkage wins.
func resolverFor(dev Device) DownstreamResolver {
	if dev.ParentBridge != "" {
		return linkResolver{}
	}
	return busResolver{}
}

// linkResolver follows the explicit parent_bridge field up to the parent's
// bus id.
type linkResolver struct{}

func (linkResolver) IsDownstreamOf(dev, parent Device) bool {
	return strings.EqualFold(dev.ParentBridge, parent.BusID) ||
		busNumber(Device{BusID: dev.ParentBridge}) == busNumber(parent)
}

// busResolver approximates parentage as "device bus number greater than the
// switch's". Known to misclassify multi-segment topologies; kept until a
// full bus-tree walk replaces it.
type busResolver struct{}

func (busResolver) IsDownstreamOf(dev, parent Device) bool {
	db, pb := busNumber(dev), busNumber(parent)
	if db < 0 || pb < 0 {
		return false
	}
	return db > pb
}

// busNumber extracts the hex bus number from a "dddd:bb:dd.f" or "bb:dd.f"
// PCI address. Returns -1 when unparseable.
func busNumber(dev Device) int {
	parts := strings.Split(dev.BusID, ":")
	var bus string
	switch len(parts) {
	case 3:
		bus = parts[1]
	case 2:
		bus = parts[0]
	default:
		return -1
	}
	n, err := strconv.ParseInt(bus, 16, 32)
	if err != nil {
		return -1
	}
	return int(n)
}
