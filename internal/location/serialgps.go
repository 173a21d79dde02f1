package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"go.bug.st/serial"

	"liveattendance/internal/geo"
)

// DefaultMaxHDOP is the worst horizontal dilution accepted for a
// high-accuracy fix.
const DefaultMaxHDOP = 5.0

// DefaultBaud is the NMEA 0183 standard rate.
const DefaultBaud = 9600

// SerialGPS reads NMEA 0183 sentences from a GPS receiver on a serial port.
type SerialGPS struct {
	PortName string
	Baud     int
	MaxHDOP  float64

	mu   sync.Mutex
	port serial.Port
}

func NewSerialGPS(portName string, baud int) *SerialGPS {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &SerialGPS{PortName: portName, Baud: baud, MaxHDOP: DefaultMaxHDOP}
}

// HasPermission probes the device node; only a permission error counts as
// missing permission.
func (g *SerialGPS) HasPermission() bool {
	p, err := serial.Open(g.PortName, &serial.Mode{BaudRate: g.Baud})
	if err != nil {
		var perr *serial.PortError
		if errors.As(err, &perr) && perr.Code() == serial.PermissionDenied {
			return false
		}
		return !errors.Is(err, os.ErrPermission)
	}
	_ = p.Close()
	return true
}

func (g *SerialGPS) IsServiceEnabled() bool {
	ports, err := serial.GetPortsList()
	if err == nil {
		for _, p := range ports {
			if p == g.PortName {
				return true
			}
		}
	}
	// symlinks such as /dev/gps0 are not enumerated
	_, err = os.Stat(g.PortName)
	return err == nil
}

// RequestPermission cannot grant device access by itself; it tells the
// operator what to do.
func (g *SerialGPS) RequestPermission(ctx context.Context) error {
	log.Printf("[gps] no access to %s: add the user to the dialout group (or fix the udev rule) and retry", g.PortName)
	return nil
}

func (g *SerialGPS) RequestSingleFix(ctx context.Context, req FixRequest) (geo.Point, error) {
	port, err := serial.Open(g.PortName, &serial.Mode{BaudRate: g.Baud})
	if err != nil {
		var perr *serial.PortError
		if errors.As(err, &perr) {
			switch perr.Code() {
			case serial.PermissionDenied:
				return geo.Point{}, ErrPermissionDenied
			case serial.PortNotFound:
				return geo.Point{}, ErrServiceDisabled
			}
		}
		return geo.Point{}, fmt.Errorf("open %s: %w", g.PortName, err)
	}

	g.mu.Lock()
	g.port = port
	g.mu.Unlock()
	defer g.CancelFixRequest()
	stop := context.AfterFunc(ctx, g.CancelFixRequest)
	defer stop()

	timeout := req.Interval
	if timeout <= 0 || timeout > time.Second {
		timeout = time.Second
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		return geo.Point{}, fmt.Errorf("set read timeout: %w", err)
	}

	var pending []byte
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return geo.Point{}, err
		}
		n, err := port.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return geo.Point{}, ctx.Err()
			}
			return geo.Point{}, fmt.Errorf("read %s: %w", g.PortName, err)
		}
		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimSpace(string(pending[:i]))
			pending = pending[i+1:]
			if fix, ok := parseFix(line, req.HighAccuracy, g.MaxHDOP); ok {
				return fix, nil
			}
		}
		if len(pending) > 4096 {
			pending = pending[:0]
		}
	}
}

// CancelFixRequest closes the port if a fix request is in flight.
func (g *SerialGPS) CancelFixRequest() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.port != nil {
		_ = g.port.Close()
		g.port = nil
	}
}

// parseFix extracts a position from one NMEA sentence. GGA is accepted when
// it carries a fix (and, for high accuracy, a small enough HDOP); RMC only
// when high accuracy is not required.
func parseFix(line string, highAccuracy bool, maxHDOP float64) (geo.Point, bool) {
	if !strings.HasPrefix(line, "$") {
		return geo.Point{}, false
	}
	s, err := nmea.Parse(line)
	if err != nil {
		return geo.Point{}, false
	}
	switch m := s.(type) {
	case nmea.GGA:
		if m.FixQuality == nmea.Invalid || m.FixQuality == "" {
			return geo.Point{}, false
		}
		if highAccuracy && maxHDOP > 0 && m.HDOP > maxHDOP {
			return geo.Point{}, false
		}
		p := geo.Point{Lat: m.Latitude, Lng: m.Longitude}
		return p, p.Valid()
	case nmea.RMC:
		if highAccuracy || m.Validity != nmea.ValidRMC {
			return geo.Point{}, false
		}
		p := geo.Point{Lat: m.Latitude, Lng: m.Longitude}
		return p, p.Valid()
	}
	return geo.Point{}, false
}
