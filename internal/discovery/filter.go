// Package discovery classifies a flat PCI device list into the Atlas switch
// under test, infrastructure to exclude (bridges, other switches), and the
// downstream endpoints eligible for testing.
package discovery

import (
	"fmt"
	"strings"
)

// AtlasVendorID identifies the Atlas switch by PCI vendor id.
const AtlasVendorID = "1000"

// bridgeClassPrefix is the PCI base class for bridge devices.
const bridgeClassPrefix = "06"

// Device is one entry from the host's flat device list.
type Device struct {
	VendorID     string `json:"vendor_id"`
	DeviceName   string `json:"device_name"`
	Description  string `json:"description"`
	ClassCode    string `json:"class_code"`
	DeviceType   string `json:"device_type"`
	BusID        string `json:"bus_id"`
	ParentBridge string `json:"parent_bridge,omitempty"`
}

// Exclusion pairs an excluded device with the reason it was dropped.
type Exclusion struct {
	Device Device `json:"device"`
	Reason string `json:"reason"`
}

// FilterResult is the outcome of one discovery request. Not persisted.
type FilterResult struct {
	Filtered    []Device    `json:"filtered"`
	Excluded    []Exclusion `json:"excluded"`
	Atlas3Found bool        `json:"atlas3_found"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Filter classifies devices for a test run. The Atlas switch itself is
// always excluded from the testable set; bridges and other switches are
// excluded by class code or description; remaining devices must sit
// downstream of the switch.
func Filter(devices []Device) FilterResult {
	var res FilterResult

	switchDev, warnings := findSwitch(devices)
	res.Warnings = warnings
	res.Atlas3Found = switchDev != nil

	for _, dev := range devices {
		if switchDev != nil && dev == *switchDev {
			res.Excluded = append(res.Excluded, Exclusion{dev, "Atlas switch under test"})
			continue
		}
		if isBridge(dev) {
			res.Excluded = append(res.Excluded, Exclusion{dev, "PCI bridge"})
			continue
		}
		if isSwitch(dev) {
			res.Excluded = append(res.Excluded, Exclusion{dev, "switch device"})
			continue
		}
		if switchDev != nil && !resolverFor(dev).IsDownstreamOf(dev, *switchDev) {
			res.Excluded = append(res.Excluded, Exclusion{dev, "not downstream of switch"})
			continue
		}
		res.Filtered = append(res.Filtered, dev)
	}

	return res
}

// findSwitch locates the Atlas switch by vendor id or by "atlas" appearing
// in the name or description. First match wins; additional candidates only
// produce a warning.
func findSwitch(devices []Device) (*Device, []string) {
	var found *Device
	var warnings []string
	for i := range devices {
		if !isAtlas(devices[i]) {
			continue
		}
		if found == nil {
			found = &devices[i]
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"multiple atlas switch candidates, using %s over %s", found.BusID, devices[i].BusID))
	}
	return found, warnings
}

func isAtlas(dev Device) bool {
	if strings.EqualFold(strings.TrimPrefix(dev.VendorID, "0x"), AtlasVendorID) {
		return true
	}
	return containsFold(dev.DeviceName, "atlas") || containsFold(dev.Description, "atlas")
}

// isBridge and isSwitch are independent checks; either can exclude a device.
func isBridge(dev Device) bool {
	class := strings.TrimPrefix(strings.ToLower(dev.ClassCode), "0x")
	if strings.HasPrefix(class, bridgeClassPrefix) {
		return true
	}
	return containsFold(dev.DeviceType, "bridge") || containsFold(dev.Description, "bridge")
}

func isSwitch(dev Device) bool {
	return containsFold(dev.DeviceType, "switch") || containsFold(dev.Description, "switch")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
