// usbioctl sets or queries the digital output pins of a USB-IO adapter.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/phsym/console-slog"
	flag "github.com/spf13/pflag"

	"github.com/ao-kenji/usbioctl/internal/hid"
	"github.com/ao-kenji/usbioctl/usbio"
)

const defaultPort = 2

var (
	devPath  = flag.StringP("file", "f", "", "open exactly this device node, no scanning")
	port     = flag.IntP("port", "p", defaultPort, "logical output port (1 or 2)")
	readOnly = flag.BoolP("read", "r", false, "query the port state instead of writing")
	list     = flag.BoolP("list", "l", false, "list visible HID devices and exit")
	verbose  = flag.BoolP("verbose", "v", false, "trace reports on stderr")
	limit    = flag.IntP("count", "c", usbio.DefaultRetryLimit, "reply reads per exchange before giving up (0 = no limit)")
	settle   = flag.DurationP("wait", "w", 3*time.Second, "delay before the pins are cleared again")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *list {
		return listDevices()
	}

	if !usbio.ValidPort(*port) {
		usage()
		return 2
	}

	var value byte
	if *readOnly {
		if flag.NArg() != 0 {
			usage()
			return 2
		}
	} else {
		if flag.NArg() != 1 {
			usage()
			return 2
		}
		v, err := strconv.Atoi(flag.Arg(0))
		if err != nil || v < 0 || v > 255 {
			usage()
			return 2
		}
		value = byte(v)
	}

	mgr, err := hid.NewManager()
	if err != nil {
		logger.Error("HID manager unavailable", slog.Any("error", err))
		return 1
	}

	retry := *limit
	if retry == 0 {
		retry = -1 // unbounded
	}
	cfg := usbio.SessionConfig{RetryLimit: retry, Logger: logger}

	sess, err := usbio.Locate(mgr, *devPath, cfg)
	if err != nil {
		logger.Error("can not find/open USB-IO device", slog.Any("error", err))
		reportNeighbors(logger)
		return 1
	}
	defer sess.Close()
	logger.Debug("session established", slog.String("protocol", sess.Version().String()))

	if *readOnly {
		rep, err := sess.Read(*port)
		switch {
		case err == nil:
			fmt.Printf("port %d = 0x%02X\n", rep.Port, rep.Value)
			return 0
		case usbio.Soft(err):
			logger.Warn("adapter did not answer the probe", slog.Any("error", err))
			return 0
		default:
			logger.Error("exchange failed", slog.Any("error", err))
			return 1
		}
	}

	if err := writeValue(sess, *port, value, logger); err != nil {
		return 1
	}

	time.Sleep(*settle)

	// Always finish by clearing the pins that were just driven.
	if err := writeValue(sess, *port, 0, logger); err != nil {
		return 1
	}
	return 0
}

func writeValue(sess *usbio.Session, port int, value byte, logger *slog.Logger) error {
	rep, err := sess.Write(port, value)
	switch {
	case err == nil:
		logger.Debug("write acknowledged",
			slog.Int("port", rep.Port),
			slog.String("value", fmt.Sprintf("0x%02X", rep.Value)))
	case usbio.Soft(err):
		logger.Warn("write not acknowledged", slog.Any("error", err))
	default:
		logger.Error("exchange failed", slog.Any("error", err))
		return err
	}
	return nil
}

func listDevices() int {
	devs, err := hid.List()
	if err != nil {
		slog.Error("HID enumeration failed", slog.Any("error", err))
		return 1
	}
	for _, d := range devs {
		marker := " "
		if _, ok := usbio.Match(usbio.Identity{VendorID: d.VendorID, ProductID: d.ProductID}); ok {
			marker = "*"
		}
		fmt.Printf("%s %04x:%04x rel %04x  %-24s %s\n",
			marker, d.VendorID, d.ProductID, d.Release, d.Product, d.Path)
	}
	return 0
}

func reportNeighbors(logger *slog.Logger) {
	devs, err := hid.List()
	if err != nil || len(devs) == 0 {
		return
	}
	for _, d := range devs {
		logger.Info("visible HID device",
			slog.String("path", d.Path),
			slog.String("vendor", fmt.Sprintf("0x%04X", d.VendorID)),
			slog.String("product", fmt.Sprintf("0x%04X", d.ProductID)))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-rlv] [-f device] [-p port] [-c limit] [-w delay] value\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\tDefault port = %d\n", defaultPort)
	flag.PrintDefaults()
}
