// ABOUTME: GPS receiver platform reading NMEA 0183 sentences from a serial port
// ABOUTME: Parses GGA fixes and maps port failures to platform error codes

package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
	"go.bug.st/serial"
)

// uereMeters converts HDOP into an accuracy radius.
const uereMeters = 5.0

// DefaultBaudRate is the usual rate for consumer GPS receivers.
const DefaultBaudRate = 9600

// NMEA reads fixes from a GPS receiver.
type NMEA struct {
	path        string
	open        func() (io.ReadCloser, error)
	reopenDelay time.Duration
	cache       fixCache
}

// NewNMEA creates a platform for the serial device at path.
func NewNMEA(path string, baudRate int) *NMEA {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return &NMEA{
		path: path,
		open: func() (io.ReadCloser, error) {
			return serial.Open(path, mode)
		},
		reopenDelay: time.Second,
	}
}

// newNMEAWithOpener is used by tests to feed sentences without a device.
func newNMEAWithOpener(open func() (io.ReadCloser, error)) *NMEA {
	return &NMEA{open: open, reopenDelay: 10 * time.Millisecond}
}

// QueryPermission reports denied when the device is not accessible to us.
func (p *NMEA) QueryPermission(context.Context) (models.PermissionState, error) {
	if p.path == "" {
		return models.PermissionPrompt, nil
	}
	f, err := os.Open(p.path)
	if err != nil {
		if os.IsPermission(err) {
			return models.PermissionDenied, nil
		}
		return models.PermissionPrompt, err
	}
	_ = f.Close()
	return models.PermissionGranted, nil
}

func openError(err error) error {
	var pe *serial.PortError
	if errors.As(err, &pe) && pe.Code() == serial.PermissionDenied {
		return &location.PlatformError{Code: location.CodePermissionDenied, Message: err.Error()}
	}
	if os.IsPermission(err) {
		return &location.PlatformError{Code: location.CodePermissionDenied, Message: err.Error()}
	}
	return &location.PlatformError{Code: location.CodePositionUnavailable, Message: "open: " + err.Error()}
}

// CurrentPosition reads until the first valid fix or the timeout.
func (p *NMEA) CurrentPosition(ctx context.Context, opts location.Options) (models.Position, error) {
	if fix, ok := p.cache.get(opts.MaximumAge); ok {
		return fix, nil
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	port, err := p.open()
	if err != nil {
		return models.Position{}, openError(err)
	}
	defer port.Close()

	fixes := make(chan models.Position, 1)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(port)
		for scanner.Scan() {
			if fix, ok, _ := ParseGGA(scanner.Text()); ok {
				fixes <- fix
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		readErr <- err
	}()

	select {
	case fix := <-fixes:
		p.cache.put(fix)
		return fix, nil
	case err := <-readErr:
		return models.Position{}, &location.PlatformError{Code: location.CodePositionUnavailable, Message: "read: " + err.Error()}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.Position{}, &location.PlatformError{Code: location.CodeTimeout, Message: "no fix from receiver"}
		}
		return models.Position{}, ctx.Err()
	}
}

// WatchPosition streams fixes until stopped. A silent receiver reports a
// timeout per Timeout period; a dropped port is reopened.
func (p *NMEA) WatchPosition(opts location.Options, onFix func(models.Position), onErr func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go p.watchLoop(ctx, opts, onFix, onErr)
	return cancel
}

func (p *NMEA) watchLoop(ctx context.Context, opts location.Options, onFix func(models.Position), onErr func(error)) {
	for ctx.Err() == nil {
		port, err := p.open()
		if err != nil {
			onErr(openError(err))
		} else {
			p.stream(ctx, port, opts, onFix, onErr)
			_ = port.Close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.reopenDelay):
		}
	}
}

func (p *NMEA) stream(ctx context.Context, port io.Reader, opts location.Options, onFix func(models.Position), onErr func(error)) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(port)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		readErr <- err
	}()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = location.WatchOptions.Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case line := <-lines:
			fix, ok, _ := ParseGGA(line)
			if !ok || ctx.Err() != nil {
				continue
			}
			p.cache.put(fix)
			onFix(fix)
			timer.Reset(timeout)
		case <-timer.C:
			onErr(&location.PlatformError{Code: location.CodeTimeout, Message: fmt.Sprintf("no fix within %s", timeout)})
			timer.Reset(timeout)
		case err := <-readErr:
			if ctx.Err() == nil {
				onErr(&location.PlatformError{Code: location.CodePositionUnavailable, Message: "read: " + err.Error()})
			}
			return
		}
	}
}

// ParseGGA extracts a fix from a GGA sentence of any talker. ok is false
// for other sentences and for GGA without a fix.
func ParseGGA(sentence string) (fix models.Position, ok bool, err error) {
	sentence = strings.TrimSpace(sentence)
	if !strings.HasPrefix(sentence, "$") {
		return fix, false, nil
	}
	body := sentence[1:]
	if star := strings.LastIndexByte(body, '*'); star >= 0 {
		want, perr := strconv.ParseUint(body[star+1:], 16, 8)
		if perr != nil {
			return fix, false, fmt.Errorf("bad checksum field: %w", perr)
		}
		body = body[:star]
		if got := nmeaChecksum(body); got != byte(want) {
			return fix, false, fmt.Errorf("checksum mismatch: got %02X want %02X", got, want)
		}
	}

	fields := strings.Split(body, ",")
	if len(fields[0]) != 5 || !strings.HasSuffix(fields[0], "GGA") {
		return fix, false, nil
	}
	if len(fields) < 9 {
		return fix, false, fmt.Errorf("short GGA sentence: %d fields", len(fields))
	}
	if fields[6] == "" || fields[6] == "0" {
		return fix, false, nil
	}

	lat, err := parseCoordinate(fields[2], fields[3], 2)
	if err != nil {
		return fix, false, fmt.Errorf("latitude: %w", err)
	}
	lng, err := parseCoordinate(fields[4], fields[5], 3)
	if err != nil {
		return fix, false, fmt.Errorf("longitude: %w", err)
	}

	fix = models.Position{Latitude: lat, Longitude: lng}
	if fields[8] != "" {
		hdop, err := strconv.ParseFloat(fields[8], 64)
		if err != nil {
			return models.Position{}, false, fmt.Errorf("hdop: %w", err)
		}
		fix.Accuracy = hdop * uereMeters
	}
	return fix, true, nil
}

// parseCoordinate converts (d)ddmm.mmmm plus hemisphere into degrees.
func parseCoordinate(value, hemisphere string, degDigits int) (float64, error) {
	if len(value) < degDigits+2 {
		return 0, fmt.Errorf("malformed value %q", value)
	}
	deg, err := strconv.ParseFloat(value[:degDigits], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil {
		return 0, err
	}
	out := deg + minutes/60
	switch hemisphere {
	case "N", "E":
	case "S", "W":
		out = -out
	default:
		return 0, fmt.Errorf("unknown hemisphere %q", hemisphere)
	}
	return out, nil
}

func nmeaChecksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}
