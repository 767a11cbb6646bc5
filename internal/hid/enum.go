package hid

import (
	"github.com/karalabe/usb"
)

// List enumerates every HID device visible to the host, independent of the
// manager backend. Used for diagnostics when the node scan comes up empty.
func List() ([]Info, error) {
	devs, err := usb.EnumerateHid(0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		out = append(out, Info{
			Path:         d.Path,
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Release:      d.Release,
			Product:      d.Product,
			Manufacturer: d.Manufacturer,
		})
	}
	return out, nil
}
