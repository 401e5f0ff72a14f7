package discovery

import (
	"strings"
	"testing"
)

var (
	atlasSwitch = Device{VendorID: "1000", DeviceName: "Atlas 3 Switch", Description: "PCIe Gen6 switch", ClassCode: "0604", BusID: "0000:10:00.0"}
	rootBridge  = Device{VendorID: "8086", DeviceName: "Root Port", Description: "PCIe root port", ClassCode: "0604", BusID: "0000:00:01.0"}
	nvmeBelow   = Device{VendorID: "144d", DeviceName: "NVMe SSD", Description: "NVMe controller", ClassCode: "0108", BusID: "0000:17:00.0"}
	nvmeAbove   = Device{VendorID: "144d", DeviceName: "Boot SSD", Description: "NVMe controller", ClassCode: "0108", BusID: "0000:03:00.0"}
)

func TestFilterExcludesSwitchExactlyOnce(t *testing.T) {
	res := Filter([]Device{atlasSwitch, nvmeBelow})

	if !res.Atlas3Found {
		t.Fatal("atlas switch not found")
	}
	for _, d := range res.Filtered {
		if d == atlasSwitch {
			t.Fatal("switch leaked into filtered set")
		}
	}
	count := 0
	for _, e := range res.Excluded {
		if e.Device == atlasSwitch {
			count++
			if !strings.Contains(strings.ToLower(e.Reason), "switch") {
				t.Fatalf("switch exclusion reason %q does not mention switch", e.Reason)
			}
		}
	}
	if count != 1 {
		t.Fatalf("switch excluded %d times, want exactly 1", count)
	}
}

func TestFilterExcludesBridgesAndSwitches(t *testing.T) {
	otherSwitch := Device{VendorID: "10b5", DeviceName: "PEX switch", Description: "upstream switch port", ClassCode: "0604", BusID: "0000:20:00.0"}
	typedBridge := Device{VendorID: "8086", DeviceName: "DMI", DeviceType: "Host Bridge", ClassCode: "0108", BusID: "0000:30:00.0"}

	res := Filter([]Device{atlasSwitch, rootBridge, otherSwitch, typedBridge, nvmeBelow})

	if len(res.Filtered) != 1 || res.Filtered[0] != nvmeBelow {
		t.Fatalf("filtered = %+v, want only the downstream NVMe device", res.Filtered)
	}

	reasons := make(map[string]string)
	for _, e := range res.Excluded {
		reasons[e.Device.DeviceName] = e.Reason
	}
	if !strings.Contains(reasons["Root Port"], "bridge") {
		t.Fatalf("root port reason = %q", reasons["Root Port"])
	}
	// Class code excludes the PEX switch as a bridge before the substring
	// rule sees it; either exclusion path is valid, it must just be out.
	if _, ok := reasons["PEX switch"]; !ok {
		t.Fatal("PEX switch not excluded")
	}
	if !strings.Contains(reasons["DMI"], "bridge") {
		t.Fatalf("typed bridge reason = %q", reasons["DMI"])
	}
}

func TestFilterBusNumberHeuristic(t *testing.T) {
	res := Filter([]Device{atlasSwitch, nvmeBelow, nvmeAbove})

	if len(res.Filtered) != 1 || res.Filtered[0] != nvmeBelow {
		t.Fatalf("filtered = %+v", res.Filtered)
	}
	found := false
	for _, e := range res.Excluded {
		if e.Device == nvmeAbove && strings.Contains(e.Reason, "downstream") {
			found = true
		}
	}
	if !found {
		t.Fatal("device above the switch bus not excluded as non-downstream")
	}
}

func TestFilterExplicitParentLinkIsAuthoritative(t *testing.T) {
	// Bus 03 is below the switch bus number, but the explicit parent link
	// says it hangs off the switch. The link wins.
	linked := nvmeAbove
	linked.ParentBridge = atlasSwitch.BusID

	res := Filter([]Device{atlasSwitch, linked})
	if len(res.Filtered) != 1 || res.Filtered[0] != linked {
		t.Fatalf("filtered = %+v, want the explicitly linked device", res.Filtered)
	}

	// And an explicit link to somewhere else excludes a device the bus
	// heuristic would have kept.
	elsewhere := nvmeBelow
	elsewhere.ParentBridge = "0000:00:01.0"
	res = Filter([]Device{atlasSwitch, elsewhere})
	if len(res.Filtered) != 0 {
		t.Fatalf("filtered = %+v, want none", res.Filtered)
	}
}

func TestFilterSwitchByDescriptionSubstring(t *testing.T) {
	byName := Device{VendorID: "ffff", DeviceName: "Gen6 ATLAS eval board", ClassCode: "0604", BusID: "0000:10:00.0"}
	res := Filter([]Device{byName, nvmeBelow})
	if !res.Atlas3Found {
		t.Fatal("substring match on name should identify the switch")
	}
}

func TestFilterWarnsOnMultipleCandidates(t *testing.T) {
	second := atlasSwitch
	second.BusID = "0000:40:00.0"
	res := Filter([]Device{atlasSwitch, second, nvmeBelow})

	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", res.Warnings)
	}
	// First candidate wins; the second is still excluded (as a switch-class
	// device), never tested.
	for _, d := range res.Filtered {
		if d == second {
			t.Fatal("second atlas candidate leaked into filtered set")
		}
	}
}

func TestBusNumber(t *testing.T) {
	cases := map[string]int{
		"0000:17:00.0": 0x17,
		"3a:00.1":      0x3a,
		"bogus":        -1,
		"":             -1,
	}
	for id, want := range cases {
		if got := busNumber(Device{BusID: id}); got != want {
			t.Errorf("busNumber(%q) = %d, want %d", id, got, want)
		}
	}
}
