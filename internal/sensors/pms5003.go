package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jacobsa/go-serial/serial"
)

// PMS5003 frame layout: two start-of-frame bytes, a big-endian length word
// covering everything after itself, 13 big-endian data words and a checksum
// word summing all preceding bytes.
const (
	pmsSOF1 = 0x42
	pmsSOF2 = 0x4D

	pmsFrameLength  = 28 // 13 data words plus the checksum
	pmsPayloadWords = 13

	// DefaultFrameWait bounds the search for a valid frame. The sensor
	// emits one every 200-800ms in active mode, so anything beyond a few
	// seconds of silence means it is absent or asleep.
	DefaultFrameWait = 5 * time.Second
)

// ErrReadTimeout reports that no complete frame arrived within the frame
// wait window. It is the one particulate failure a run recovers from;
// corrupt data is not it.
var ErrReadTimeout = errors.New("pms5003: read timeout, no frame received")

// ErrChecksum reports a frame whose checksum does not match its contents.
var ErrChecksum = errors.New("pms5003: frame checksum mismatch")

// Size selects a particle size bin.
type Size int

const (
	SizePM1  Size = iota // particles up to 1.0um
	SizePM25             // up to 2.5um
	SizePM10             // up to 10um
	SizeMax              // everything up to the sensor's largest bin
)

func (s Size) String() string {
	switch s {
	case SizePM1:
		return "PM1.0"
	case SizePM25:
		return "PM2.5"
	case SizePM10:
		return "PM10"
	case SizeMax:
		return "max"
	}
	return fmt.Sprintf("Size(%d)", int(s))
}

// Basis selects the calibration a concentration is reported against.
type Basis int

const (
	BasisStandard      Basis = iota // CF=1 factory calibration
	BasisEnvironmental              // atmospheric environment calibration
)

func (b Basis) String() string {
	switch b {
	case BasisStandard:
		return "standard"
	case BasisEnvironmental:
		return "environmental"
	}
	return fmt.Sprintf("Basis(%d)", int(b))
}

// ParticulateReading is one decoded PMS5003 frame.
type ParticulateReading struct {
	Words [pmsPayloadWords]uint16
}

// Concentration returns the mass concentration in ug/m3 for a size and
// basis. The environmental basis has no literal PM10 slot on the wire; the
// coarse value is the sensor's max-bin aggregate and is requested with
// SizeMax. Combinations the frame does not carry return an error.
func (r ParticulateReading) Concentration(size Size, basis Basis) (float64, error) {
	switch basis {
	case BasisStandard:
		switch size {
		case SizePM1:
			return float64(r.Words[0]), nil
		case SizePM25:
			return float64(r.Words[1]), nil
		case SizePM10:
			return float64(r.Words[2]), nil
		}
	case BasisEnvironmental:
		switch size {
		case SizePM1:
			return float64(r.Words[3]), nil
		case SizePM25:
			return float64(r.Words[4]), nil
		case SizeMax:
			return float64(r.Words[5]), nil
		}
	}
	return 0, fmt.Errorf("pms5003: frame carries no %s concentration on the %s basis", size, basis)
}

func (r ParticulateReading) String() string {
	return fmt.Sprintf("pm1.0=%d pm2.5=%d pm10=%d pm1.0env=%d pm2.5env=%d maxenv=%d",
		r.Words[0], r.Words[1], r.Words[2], r.Words[3], r.Words[4], r.Words[5])
}

// PMS5003 reads particulate matter frames from the sensor's serial stream.
// The sensor pushes frames unprompted, so reading is a matter of finding
// the next frame boundary and validating what follows.
type PMS5003 struct {
	port   io.Reader
	wait   time.Duration
	logger *slog.Logger
}

func NewPMS5003(port io.Reader, wait time.Duration, logger *slog.Logger) *PMS5003 {
	if wait <= 0 {
		wait = DefaultFrameWait
	}
	return &PMS5003{port: port, wait: wait, logger: logger}
}

// Read blocks until one complete valid frame arrives and decodes it.
// Silence, or a stream that ends before a frame completes, surfaces as
// ErrReadTimeout. A frame that arrives but fails validation does not.
func (p *PMS5003) Read() (ParticulateReading, error) {
	deadline := time.Now().Add(p.wait)

	if err := p.seekFrameStart(deadline); err != nil {
		return ParticulateReading{}, err
	}

	var header [2]byte
	if err := p.readFull(header[:], deadline); err != nil {
		return ParticulateReading{}, err
	}
	length := binary.BigEndian.Uint16(header[:])
	if length != pmsFrameLength {
		return ParticulateReading{}, fmt.Errorf("pms5003: unexpected frame length %d, want %d", length, pmsFrameLength)
	}

	body := make([]byte, pmsFrameLength)
	if err := p.readFull(body, deadline); err != nil {
		return ParticulateReading{}, err
	}

	sum := uint16(pmsSOF1) + uint16(pmsSOF2) + uint16(header[0]) + uint16(header[1])
	for _, b := range body[:len(body)-2] {
		sum += uint16(b)
	}
	checksum := binary.BigEndian.Uint16(body[len(body)-2:])
	if sum != checksum {
		return ParticulateReading{}, fmt.Errorf("%w: calculated %#04x, frame carries %#04x", ErrChecksum, sum, checksum)
	}

	var r ParticulateReading
	for i := range r.Words {
		r.Words[i] = binary.BigEndian.Uint16(body[2*i:])
	}

	p.logger.Debug("PMS5003 frame received", "frame", r)

	return r, nil
}

// seekFrameStart consumes the stream byte by byte until the two-byte frame
// marker appears. The stream may resume mid-frame after a run that left
// bytes in the UART buffer.
func (p *PMS5003) seekFrameStart(deadline time.Time) error {
	sawFirst := false
	for {
		b, err := p.readByte(deadline)
		if err != nil {
			return err
		}
		switch {
		case sawFirst && b == pmsSOF2:
			return nil
		case b == pmsSOF1:
			sawFirst = true
		default:
			sawFirst = false
		}
	}
}

func (p *PMS5003) readByte(deadline time.Time) (byte, error) {
	var buf [1]byte
	if err := p.readFull(buf[:], deadline); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// readFull fills buf from the port, treating end-of-stream and an expired
// deadline both as the sensor failing to deliver a frame in time. The
// serial port itself returns io.EOF once its inter-character timeout fires
// with nothing buffered.
func (p *PMS5003) readFull(buf []byte, deadline time.Time) error {
	read := 0
	for read < len(buf) {
		if time.Now().After(deadline) {
			return ErrReadTimeout
		}
		n, err := p.port.Read(buf[read:])
		read += n
		if read == len(buf) {
			return nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrReadTimeout
		}
		if err != nil {
			return fmt.Errorf("pms5003: serial read: %w", err)
		}
	}
	return nil
}

// OpenSerial opens the particulate sensor's UART with the PMS5003 line
// settings. The inter-character timeout makes a silent sensor surface as
// an end-of-stream read instead of blocking forever.
func OpenSerial(device string, wait time.Duration) (io.ReadWriteCloser, error) {
	if wait <= 0 {
		wait = DefaultFrameWait
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:              device,
		BaudRate:              9600,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(wait / time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return port, nil
}
