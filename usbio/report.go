package usbio

import (
	"fmt"
)

const (
	reportLenV1 = 8
	reportLenV2 = 64

	// V1 opcodes encode the operation and the port together.
	opcodeReadPort1  = 0x01
	opcodeReadPort2  = 0x02
	opcodeWritePort1 = 0x11
	opcodeWritePort2 = 0x12

	// V2 drives and samples a port with one unified opcode.
	opcodeRW = 0x20
)

// Report is one fixed-size request or reply exchanged with the adapter.
type Report []byte

// Tag returns the sequence tag carried in the report's trailing byte.
func (r Report) Tag() byte { return r[len(r)-1] }

// Reply is the decoded content of a reply report.
type Reply struct {
	Port  int
	Value byte
	Seq   byte
}

// Revision captures encoding conventions that vary across adapter builds
// rather than protocol versions: how a logical port maps to the V2 selector
// byte, and which pin bits each port may drive.
type Revision struct {
	// SelectorOffset is added to the logical port number to form the V2
	// selector byte. Most adapters take the port number directly.
	SelectorOffset byte
	// PortMasks constrains the data byte per logical port. Ports without
	// an entry drive all eight bits.
	PortMasks map[int]byte
}

// DefaultRevision matches the Km2Net USB-IO 2.0: direct port selectors and
// a 4-bit port 2.
func DefaultRevision() Revision {
	return Revision{PortMasks: map[int]byte{2: 0x0F}}
}

func (r Revision) mask(port int) byte {
	if m, ok := r.PortMasks[port]; ok {
		return m
	}
	return 0xFF
}

// Codec encodes and decodes reports for one protocol version. Reports are
// freshly allocated with all reserved bytes zeroed.
type Codec interface {
	EncodeWrite(port int, value byte, seq byte) Report
	EncodeReadProbe(port int, seq byte) Report
	Decode(rep Report) (Reply, error)
	Len() int
}

// NewCodec returns the codec for a protocol version under the given
// revision conventions.
func NewCodec(v Version, rev Revision) (Codec, error) {
	switch v {
	case V1:
		return v1Codec{rev}, nil
	case V2:
		return v2Codec{rev}, nil
	}
	return nil, fmt.Errorf("usbio: unknown protocol version %d", int(v))
}

type v1Codec struct{ rev Revision }

func (c v1Codec) Len() int { return reportLenV1 }

func (c v1Codec) EncodeWrite(port int, value byte, seq byte) Report {
	rep := make(Report, reportLenV1)
	rep[0] = v1Opcode(port, true)
	rep[1] = value & c.rev.mask(port)
	rep[7] = seq
	return rep
}

func (c v1Codec) EncodeReadProbe(port int, seq byte) Report {
	rep := make(Report, reportLenV1)
	rep[0] = v1Opcode(port, false)
	rep[7] = seq
	return rep
}

func (c v1Codec) Decode(rep Report) (Reply, error) {
	if len(rep) != reportLenV1 {
		return Reply{}, fmt.Errorf("usbio: bad V1 report length %d", len(rep))
	}
	var port int
	switch rep[0] {
	case opcodeReadPort1, opcodeWritePort1:
		port = 1
	case opcodeReadPort2, opcodeWritePort2:
		port = 2
	default:
		return Reply{}, fmt.Errorf("usbio: unknown V1 opcode 0x%02X", rep[0])
	}
	return Reply{Port: port, Value: rep[1], Seq: rep[7]}, nil
}

func v1Opcode(port int, write bool) byte {
	if write {
		if port == 1 {
			return opcodeWritePort1
		}
		return opcodeWritePort2
	}
	if port == 1 {
		return opcodeReadPort1
	}
	return opcodeReadPort2
}

type v2Codec struct{ rev Revision }

func (c v2Codec) Len() int { return reportLenV2 }

func (c v2Codec) EncodeWrite(port int, value byte, seq byte) Report {
	rep := make(Report, reportLenV2)
	rep[0] = opcodeRW
	rep[1] = byte(port) + c.rev.SelectorOffset
	rep[2] = value & c.rev.mask(port)
	rep[63] = seq
	return rep
}

// EncodeReadProbe encodes the unified opcode with a zero data byte. The
// adapter reports the sampled pin state in its reply.
func (c v2Codec) EncodeReadProbe(port int, seq byte) Report {
	return c.EncodeWrite(port, 0, seq)
}

func (c v2Codec) Decode(rep Report) (Reply, error) {
	if len(rep) != reportLenV2 {
		return Reply{}, fmt.Errorf("usbio: bad V2 report length %d", len(rep))
	}
	if rep[0] != opcodeRW {
		return Reply{}, fmt.Errorf("usbio: unknown V2 opcode 0x%02X", rep[0])
	}
	return Reply{
		Port:  int(rep[1] - c.rev.SelectorOffset),
		Value: rep[2],
		Seq:   rep[63],
	}, nil
}
