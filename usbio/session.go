package usbio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ao-kenji/usbioctl/internal/hid"
)

// DefaultRetryLimit bounds the reply-read loop of one exchange.
const DefaultRetryLimit = 10000

var (
	// ErrNoReply reports that the retry ceiling was reached without a
	// reply carrying the request's sequence tag. Soft: the exchange is
	// abandoned and the caller may proceed.
	ErrNoReply = errors.New("usbio: no matching reply before retry limit")

	// ErrEndOfStream reports that the device stopped producing replies
	// before one matched. Soft, like ErrNoReply.
	ErrEndOfStream = errors.New("usbio: end of report stream")
)

// Soft reports whether err is a non-fatal exchange outcome, as opposed to a
// transport failure.
func Soft(err error) bool {
	return errors.Is(err, ErrNoReply) || errors.Is(err, ErrEndOfStream)
}

// SessionConfig carries the tunables of a session. The zero value selects
// the default revision and the bounded retry discipline.
type SessionConfig struct {
	// Revision selects the per-build encoding conventions. An empty
	// revision (no masks) is replaced by DefaultRevision.
	Revision Revision
	// RetryLimit is the number of reply reads per exchange before the
	// exchange is abandoned with ErrNoReply. Zero selects
	// DefaultRetryLimit; a negative value removes the bound entirely.
	RetryLimit int
	Logger     *slog.Logger
}

func (c SessionConfig) revision() Revision {
	if c.Revision.PortMasks == nil && c.Revision.SelectorOffset == 0 {
		return DefaultRevision()
	}
	return c.Revision
}

func (c SessionConfig) retryLimit() int {
	if c.RetryLimit == 0 {
		return DefaultRetryLimit
	}
	return c.RetryLimit
}

func (c SessionConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Session is the exclusive owner of one opened adapter handle. The sequence
// counter is its only mutable state; it starts at zero and wraps mod 256.
// A Session must not be shared across goroutines.
type Session struct {
	dev     hid.Device
	version Version
	codec   Codec
	seq     byte
	limit   int
	log     *slog.Logger
}

// NewSession binds an opened device handle to the protocol version it
// speaks. The version is fixed for the session's lifetime.
func NewSession(dev hid.Device, v Version, cfg SessionConfig) (*Session, error) {
	codec, err := NewCodec(v, cfg.revision())
	if err != nil {
		return nil, err
	}
	return &Session{
		dev:     dev,
		version: v,
		codec:   codec,
		limit:   cfg.retryLimit(),
		log:     cfg.logger(),
	}, nil
}

// Version returns the protocol version the session was bound to.
func (s *Session) Version() Version { return s.version }

// Close releases the device handle.
func (s *Session) Close() error { return s.dev.Close() }

func (s *Session) bump() { s.seq++ }

// Exchange sends one request report and reads replies until one carries the
// request's sequence tag. The counter is bumped once whether or not a match
// arrives, so a lost reply desynchronizes one exchange instead of blocking
// the session.
func (s *Session) Exchange(req Report) (Report, error) {
	defer s.bump()
	return s.exchange(req)
}

func (s *Session) exchange(req Report) (Report, error) {
	if _, err := s.dev.Write(req); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	s.log.Debug("report sent", slog.String("bytes", hex.EncodeToString(req)))

	var last Report
	for n := 0; s.limit < 0 || n < s.limit; n++ {
		buf := make([]byte, s.codec.Len())
		got, err := s.dev.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		if got == 0 {
			s.log.Debug("report stream ended", slog.Int("reads", n))
			return last, ErrEndOfStream
		}
		last = Report(buf[:got])
		if last.Tag() == req.Tag() {
			s.log.Debug("reply matched",
				slog.String("bytes", hex.EncodeToString(last)),
				slog.Int("reads", n+1))
			return last, nil
		}
	}
	s.log.Debug("retry limit reached", slog.Int("reads", s.limit))
	return last, ErrNoReply
}

// Write drives value onto the port's masked pins and returns the adapter's
// acknowledged state. ErrNoReply and ErrEndOfStream are soft: the write may
// still have taken effect on the device.
func (s *Session) Write(port int, value byte) (Reply, error) {
	if !ValidPort(port) {
		return Reply{}, fmt.Errorf("usbio: invalid port %d", port)
	}
	defer s.bump()
	tag := s.seq

	if s.version == V1 {
		// Two chained reports share one tag: the write itself, whose
		// reply is discarded, then a read probe whose matching reply
		// carries the acknowledged state.
		if _, err := s.exchange(s.codec.EncodeWrite(port, value, tag)); err != nil && !Soft(err) {
			return Reply{}, err
		}
		rep, err := s.exchange(s.codec.EncodeReadProbe(port, tag))
		if err != nil {
			return Reply{}, err
		}
		return s.codec.Decode(rep)
	}

	rep, err := s.exchange(s.codec.EncodeWrite(port, value, tag))
	if err != nil {
		return Reply{}, err
	}
	return s.codec.Decode(rep)
}

// Read queries the port's current pin state without driving new output
// bits.
func (s *Session) Read(port int) (Reply, error) {
	if !ValidPort(port) {
		return Reply{}, fmt.Errorf("usbio: invalid port %d", port)
	}
	defer s.bump()
	rep, err := s.exchange(s.codec.EncodeReadProbe(port, s.seq))
	if err != nil {
		return Reply{}, err
	}
	return s.codec.Decode(rep)
}
