package usbio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCodec(t *testing.T, v Version, rev Revision) Codec {
	t.Helper()
	c, err := NewCodec(v, rev)
	require.NoError(t, err)
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, v := range []Version{V1, V2} {
		c := mustCodec(t, v, DefaultRevision())
		for port := 1; port <= 2; port++ {
			for _, value := range []byte{0x00, 0x01, 0x0A, 0x0F, 0x55, 0xFF} {
				rep, err := c.Decode(c.EncodeWrite(port, value, 0x42))
				require.NoError(t, err)
				require.Equal(t, port, rep.Port, "version %s port %d", v, port)
				require.Equal(t, value&DefaultRevision().mask(port), rep.Value)
				require.Equal(t, byte(0x42), rep.Seq)
			}
		}
	}
}

func TestEncodeWriteV1MaskedPort1(t *testing.T) {
	rev := Revision{PortMasks: map[int]byte{1: 0xF0}}
	c := mustCodec(t, V1, rev)

	rep := c.EncodeWrite(1, 0x0D, 0x07)
	require.Len(t, []byte(rep), 8)
	require.Equal(t, byte(opcodeWritePort1), rep[0])
	require.Equal(t, byte(0x00), rep[1], "0x0D & 0xF0")
	require.Equal(t, byte(0x07), rep[7])
	for i := 2; i < 7; i++ {
		require.Zero(t, rep[i], "reserved byte %d", i)
	}
}

func TestEncodeWriteV2Port2(t *testing.T) {
	c := mustCodec(t, V2, DefaultRevision())

	rep := c.EncodeWrite(2, 0x0A, 0x99)
	require.Len(t, []byte(rep), 64)
	require.Equal(t, byte(opcodeRW), rep[0])
	require.Equal(t, byte(2), rep[1])
	require.Equal(t, byte(0x0A), rep[2])
	for i := 3; i < 63; i++ {
		require.Zero(t, rep[i], "reserved byte %d", i)
	}
	require.Equal(t, byte(0x99), rep[63])
}

func TestEncodeWriteV2SelectorOffset(t *testing.T) {
	c := mustCodec(t, V2, Revision{SelectorOffset: 1, PortMasks: map[int]byte{}})

	rep := c.EncodeWrite(1, 0xFF, 0)
	require.Equal(t, byte(2), rep[1])

	dec, err := c.Decode(rep)
	require.NoError(t, err)
	require.Equal(t, 1, dec.Port)
}

func TestEncodeReadProbe(t *testing.T) {
	v1 := mustCodec(t, V1, DefaultRevision())
	rep := v1.EncodeReadProbe(2, 0x11)
	require.Equal(t, byte(opcodeReadPort2), rep[0])
	require.Equal(t, byte(0x00), rep[1])
	require.Equal(t, byte(0x11), rep[7])

	v2 := mustCodec(t, V2, DefaultRevision())
	rep = v2.EncodeReadProbe(2, 0x11)
	require.Equal(t, byte(opcodeRW), rep[0])
	require.Equal(t, byte(0x00), rep[2])
	require.Equal(t, byte(0x11), rep[63])
}

func TestDecodeRejectsBadReports(t *testing.T) {
	v1 := mustCodec(t, V1, DefaultRevision())
	_, err := v1.Decode(make(Report, 7))
	require.Error(t, err)
	bad := make(Report, 8)
	bad[0] = 0x7F
	_, err = v1.Decode(bad)
	require.Error(t, err)

	v2 := mustCodec(t, V2, DefaultRevision())
	_, err = v2.Decode(make(Report, 8))
	require.Error(t, err)
	_, err = v2.Decode(make(Report, 64)) // opcode byte zero
	require.Error(t, err)
}

func TestNewCodecUnknownVersion(t *testing.T) {
	_, err := NewCodec(Version(9), DefaultRevision())
	require.Error(t, err)
}
