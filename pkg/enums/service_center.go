package enums

import "fmt"

// ServiceCenter identifies the call center that routed an interpreter's work.
type ServiceCenter string

const (
	ServiceCenterMichaelKings ServiceCenter = "Michael Kings OPI Services"
	ServiceCenterSergio       ServiceCenter = "Sergio Call Center"
	ServiceCenterVIP          ServiceCenter = "VIP Call Center"
	ServiceCenterVIPOPI       ServiceCenter = "VIP OPI Center"
	ServiceCenterWWIForeign   ServiceCenter = "WWI Foreign"
	ServiceCenterWWISpanish   ServiceCenter = "WWI Spanish"
)

var validServiceCenters = []ServiceCenter{
	ServiceCenterMichaelKings,
	ServiceCenterSergio,
	ServiceCenterVIP,
	ServiceCenterVIPOPI,
	ServiceCenterWWIForeign,
	ServiceCenterWWISpanish,
}

// String implements fmt.Stringer.
func (s ServiceCenter) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceCenter.
func (s ServiceCenter) IsValid() bool {
	for _, candidate := range validServiceCenters {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceCenter converts raw input into a ServiceCenter.
func ParseServiceCenter(value string) (ServiceCenter, error) {
	for _, candidate := range validServiceCenters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service center %q", value)
}
