package stusb4500

import "strings"

// Alert is the set of alert bits in ALERT_STATUS_1. The same layout is used
// for ALERT_STATUS_1_MASK, where a set bit masks the alert.
type Alert uint8

// Alert bits, lowest to highest.
const (
	AlertPhyStatus             Alert = 1 << 0
	AlertPRTStatus             Alert = 1 << 1
	AlertPDTypeCStatus         Alert = 1 << 3
	AlertCCHWFaultStatus       Alert = 1 << 4
	AlertTypeCMonitoringStatus Alert = 1 << 5
	AlertPortStatus            Alert = 1 << 6
	AlertHardReset             Alert = 1 << 7

	alertAll = AlertPhyStatus | AlertPRTStatus | AlertPDTypeCStatus | AlertCCHWFaultStatus |
		AlertTypeCMonitoringStatus | AlertPortStatus | AlertHardReset
)

// AlertNone represents no alert.
const AlertNone Alert = 0

// Pop returns the highest alert bit and clears it.
func (a *Alert) Pop() Alert {
	for r := Alert(0x80); r != 0; r >>= 1 {
		if *a&r != 0 {
			*a &= ^r
			return r
		}
	}
	return AlertNone
}

// Add adds the alerts v to the set.
func (a *Alert) Add(v Alert) {
	*a |= v
}

// Clear removes the alerts v from the set.
func (a *Alert) Clear(v Alert) {
	*a &= ^v
}

// Has returns true if any of the alerts v is set.
func (a Alert) Has(v Alert) bool {
	return a&v != 0
}

func (a Alert) String() string {
	if a == AlertNone {
		return "None"
	}
	var names []string
	for a != AlertNone {
		switch r := a.Pop(); r {
		case AlertPhyStatus:
			names = append(names, "PhyStatus")
		case AlertPRTStatus:
			names = append(names, "PRTStatus")
		case AlertPDTypeCStatus:
			names = append(names, "PDTypeCStatus")
		case AlertCCHWFaultStatus:
			names = append(names, "CCHWFaultStatus")
		case AlertTypeCMonitoringStatus:
			names = append(names, "TypeCMonitoringStatus")
		case AlertPortStatus:
			names = append(names, "PortStatus")
		case AlertHardReset:
			names = append(names, "HardReset")
		default:
			names = append(names, "INVALID")
		}
	}
	return strings.Join(names, "|")
}
