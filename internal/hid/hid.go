// Package hid abstracts report-level access to USB HID device nodes.
package hid

// Device represents an opened HID device capable of report I/O.
type Device interface {
	Write([]byte) (int, error) // send output report
	Read([]byte) (int, error)  // read input report
	Close() error
}

// Info describes a HID device node.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Release      uint16
	Product      string
	Manufacturer string
}

// Manager opens HID device nodes.
type Manager interface {
	// Open opens the device node at path and reports its identity.
	Open(path string) (Device, Info, error)
	// Nodes returns the bounded, ordered list of candidate node paths to
	// scan when no explicit path is given.
	Nodes() []string
}

// maxNodes bounds the candidate scan.
const maxNodes = 10

// NewManager returns the platform HID manager.
func NewManager() (Manager, error) {
	return newManager()
}
