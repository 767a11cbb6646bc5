//go:build nohidapi

package hid

import (
	"sort"

	usbhid "rafaelmartins.com/p/usbhid"
)

type usbManager struct{}

func newManager() (Manager, error) { return &usbManager{}, nil }

func (m *usbManager) Open(path string) (Device, Info, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == path
	}, true, false)
	if err != nil {
		return nil, Info{}, err
	}
	return &usbDevice{d}, Info{
		Path:      d.Path(),
		VendorID:  d.VendorId(),
		ProductID: d.ProductId(),
		// bcdDevice is not exposed here; catalog matching only needs
		// vendor and product.
		Product:      d.Product(),
		Manufacturer: d.Manufacturer(),
	}, nil
}

func (m *usbManager) Nodes() []string {
	devs, err := usbhid.Enumerate(nil)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(devs))
	for _, d := range devs {
		paths = append(paths, d.Path())
	}
	sort.Strings(paths)
	if len(paths) > maxNodes {
		paths = paths[:maxNodes]
	}
	return paths
}

type usbDevice struct{ d *usbhid.Device }

func (d *usbDevice) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := d.d.SetOutputReport(0, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *usbDevice) Read(p []byte) (int, error) {
	_, buf, err := d.d.GetInputReport()
	if err != nil {
		return 0, err
	}
	return copy(p, buf), nil
}

func (d *usbDevice) Close() error { return d.d.Close() }
