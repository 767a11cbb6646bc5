package usbio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ao-kenji/usbioctl/internal/hid"
)

type fakeManager struct {
	nodes   []string
	infos   map[string]hid.Info
	openErr map[string]error
	devices map[string]*fakeDevice
	opened  []string
}

func newFakeManager(n int) *fakeManager {
	m := &fakeManager{
		infos:   make(map[string]hid.Info),
		openErr: make(map[string]error),
		devices: make(map[string]*fakeDevice),
	}
	for i := 0; i < n; i++ {
		node := fmt.Sprintf("/dev/uhid%d", i)
		m.nodes = append(m.nodes, node)
		m.infos[node] = hid.Info{Path: node, VendorID: 0x4242, ProductID: uint16(i)}
		m.devices[node] = &fakeDevice{}
	}
	return m
}

func (m *fakeManager) Nodes() []string { return m.nodes }

func (m *fakeManager) Open(path string) (hid.Device, hid.Info, error) {
	m.opened = append(m.opened, path)
	if err := m.openErr[path]; err != nil {
		return nil, hid.Info{}, err
	}
	return m.devices[path], m.infos[path], nil
}

func TestLocateScansInOrder(t *testing.T) {
	m := newFakeManager(10)
	m.infos["/dev/uhid3"] = hid.Info{Path: "/dev/uhid3", VendorID: 0x1352, ProductID: 0x0120}

	s, err := Locate(m, "", SessionConfig{})
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, []string{"/dev/uhid0", "/dev/uhid1", "/dev/uhid2", "/dev/uhid3"}, m.opened)
	for i := 0; i < 3; i++ {
		require.True(t, m.devices[fmt.Sprintf("/dev/uhid%d", i)].closed, "mismatched node %d closed", i)
	}
	require.False(t, m.devices["/dev/uhid3"].closed, "matched handle stays open")
	require.Equal(t, V2, s.Version())
}

func TestLocateSkipsOpenFailures(t *testing.T) {
	m := newFakeManager(3)
	m.openErr["/dev/uhid0"] = errors.New("permission denied")
	m.infos["/dev/uhid1"] = hid.Info{Path: "/dev/uhid1", VendorID: 0x1352, ProductID: 0x0100}

	s, err := Locate(m, "", SessionConfig{})
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, V1, s.Version())
}

func TestLocateExhaustedScan(t *testing.T) {
	m := newFakeManager(10)

	_, err := Locate(m, "", SessionConfig{})
	require.ErrorIs(t, err, ErrNoDevice)
	require.Len(t, m.opened, 10)
	for _, d := range m.devices {
		require.True(t, d.closed)
	}
}

func TestLocateExplicitPath(t *testing.T) {
	m := newFakeManager(10)
	m.infos["/dev/uhid7"] = hid.Info{Path: "/dev/uhid7", VendorID: 0x1352, ProductID: 0x0121}

	s, err := Locate(m, "/dev/uhid7", SessionConfig{})
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, []string{"/dev/uhid7"}, m.opened, "no scanning with an explicit path")
	require.Equal(t, V2, s.Version())
}

func TestLocateExplicitPathNoFallback(t *testing.T) {
	m := newFakeManager(10)
	m.openErr["/dev/uhid7"] = errors.New("no such file")
	m.infos["/dev/uhid3"] = hid.Info{Path: "/dev/uhid3", VendorID: 0x1352, ProductID: 0x0120}

	_, err := Locate(m, "/dev/uhid7", SessionConfig{})
	require.Error(t, err)
	require.Equal(t, []string{"/dev/uhid7"}, m.opened, "open failure must not trigger a scan")
}

func TestLocateExplicitPathNoMatch(t *testing.T) {
	m := newFakeManager(10)

	_, err := Locate(m, "/dev/uhid4", SessionConfig{})
	require.ErrorIs(t, err, ErrNoMatch)
	require.True(t, m.devices["/dev/uhid4"].closed)
}
