package usbio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ao-kenji/usbioctl/internal/hid"
)

var (
	// ErrNoDevice reports that the candidate node scan found no known
	// adapter.
	ErrNoDevice = errors.New("usbio: no USB-IO adapter found")

	// ErrNoMatch reports that an explicitly named node opened fine but is
	// not a known adapter.
	ErrNoMatch = errors.New("usbio: device is not a known USB-IO adapter")
)

// Locate opens a USB-IO adapter and binds a session to it.
//
// With a non-empty path it opens exactly that node; failure there is final,
// there is no fallback scan. With an empty path it walks the manager's
// candidate nodes in order and takes the first whose identity matches the
// catalog, closing every handle that does not.
func Locate(mgr hid.Manager, path string, cfg SessionConfig) (*Session, error) {
	log := cfg.logger()

	if path != "" {
		dev, info, err := mgr.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		v, ok := Match(identity(info))
		if !ok {
			dev.Close()
			return nil, fmt.Errorf("%s: %w", path, ErrNoMatch)
		}
		log.Debug("adapter opened", slog.String("node", path), slog.String("protocol", v.String()))
		return NewSession(dev, v, cfg)
	}

	for _, node := range mgr.Nodes() {
		dev, info, err := mgr.Open(node)
		if err != nil {
			log.Debug("skipping node", slog.String("node", node), slog.Any("error", err))
			continue
		}
		log.Debug("probing node",
			slog.String("node", node),
			slog.String("vendor", fmt.Sprintf("0x%04X", info.VendorID)),
			slog.String("product", fmt.Sprintf("0x%04X", info.ProductID)),
			slog.String("release", fmt.Sprintf("0x%04X", info.Release)))
		v, ok := Match(identity(info))
		if !ok {
			dev.Close()
			continue
		}
		log.Debug("adapter found", slog.String("node", node), slog.String("protocol", v.String()))
		return NewSession(dev, v, cfg)
	}
	return nil, ErrNoDevice
}

func identity(info hid.Info) Identity {
	return Identity{
		VendorID:  info.VendorID,
		ProductID: info.ProductID,
		Release:   info.Release,
	}
}
