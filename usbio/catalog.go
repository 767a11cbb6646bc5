// Package usbio implements the control protocol of USB-IO digital I/O
// adapters: device identification, the two incompatible report layouts, and
// the sequence-tagged request/reply exchange over the HID report channel.
package usbio

// Version selects one of the two incompatible report layouts.
type Version int

const (
	V1 Version = 1 // 8-byte reports, per-port read/write opcodes
	V2 Version = 2 // 64-byte reports, unified opcode
)

func (v Version) String() string {
	switch v {
	case V1:
		return "1.0"
	case V2:
		return "2.0"
	}
	return "unknown"
}

// Model maps a vendor/product pair to the protocol version it speaks.
type Model struct {
	VendorID  uint16
	ProductID uint16
	Version   Version
}

// Identity is what an opened device node reports about itself. Only vendor
// and product take part in catalog matching.
type Identity struct {
	VendorID  uint16
	ProductID uint16
	Release   uint16
}

// Models is the catalog of known USB-IO adapters, in match order.
var Models = []Model{
	{0x0BFE, 0x1003, V1}, // Morphy Planning USB-IO 1.0
	{0x1352, 0x0100, V1}, // Km2Net USB-IO 1.0
	{0x1352, 0x0120, V2}, // Km2Net USB-IO 2.0
	{0x1352, 0x0121, V2}, // Km2Net USB-IO 2.0(AKI)
}

// Match resolves an identity against the catalog. First match wins.
func Match(id Identity) (Version, bool) {
	for _, m := range Models {
		if m.VendorID == id.VendorID && m.ProductID == id.ProductID {
			return m.Version, true
		}
	}
	return 0, false
}

// ValidPort reports whether port names a logical output port.
func ValidPort(port int) bool {
	return port == 1 || port == 2
}
