//go:build !nohidapi

package hid

import (
	"fmt"
	"runtime"

	shid "github.com/sstallion/go-hid"
)

type hidapiManager struct{}

func newManager() (Manager, error) {
	if err := shid.Init(); err != nil {
		return nil, fmt.Errorf("hidapi init: %w", err)
	}
	return &hidapiManager{}, nil
}

func (m *hidapiManager) Open(path string) (Device, Info, error) {
	d, err := shid.OpenPath(path)
	if err != nil {
		return nil, Info{}, err
	}
	di, err := d.GetDeviceInfo()
	if err != nil {
		d.Close()
		return nil, Info{}, err
	}
	return &hidapiDevice{d}, Info{
		Path:         path,
		VendorID:     di.VendorID,
		ProductID:    di.ProductID,
		Release:      di.ReleaseNbr,
		Product:      di.ProductStr,
		Manufacturer: di.MfrStr,
	}, nil
}

// Nodes returns the flat numbered HID device node namespace of the host.
func (m *hidapiManager) Nodes() []string {
	pattern := "/dev/hidraw%d"
	switch runtime.GOOS {
	case "openbsd", "netbsd":
		pattern = "/dev/uhid%d"
	}
	nodes := make([]string, 0, maxNodes)
	for i := 0; i < maxNodes; i++ {
		nodes = append(nodes, fmt.Sprintf(pattern, i))
	}
	return nodes
}

type hidapiDevice struct{ d *shid.Device }

// Write sends p as an unnumbered output report. hidapi wants a leading
// report ID byte; USB-IO adapters use none, so it is always zero.
func (d *hidapiDevice) Write(p []byte) (int, error) {
	buf := make([]byte, len(p)+1)
	copy(buf[1:], p)
	n, err := d.d.Write(buf)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		n--
	}
	return n, nil
}

func (d *hidapiDevice) Read(p []byte) (int, error) {
	return d.d.Read(p)
}

func (d *hidapiDevice) Close() error {
	return d.d.Close()
}
