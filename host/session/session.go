// Package session records device telemetry to CSV and relays assessment
// commands over the serial link.
package session

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// csvHeader matches the column order the analysis package expects.
var csvHeader = []string{"Timestamp", "Value", "Sensor"}

// Session drives one recording run against a connected device.
type Session struct {
	port    io.ReadWriter
	reader  *bufio.Reader // single reader; buffered bytes survive the handshake
	pending string        // partial line cut off by a port read timeout
	file    *os.File
	csv     *csv.Writer
	log     *log.Logger
}

// New opens (or creates) the CSV file and prepares a session on an already
// open port. A fresh file gets the header row; an existing one is appended to.
func New(port io.ReadWriter, csvPath string, logger *log.Logger) (*Session, error) {
	info, err := os.Stat(csvPath)
	fresh := err != nil || info.Size() == 0

	file, err := os.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", csvPath, err)
	}

	w := csv.NewWriter(file)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		w.Flush()
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Session{
		port:   port,
		reader: bufio.NewReader(port),
		file:   file,
		csv:    w,
		log:    logger,
	}, nil
}

// Close flushes pending rows and closes the CSV file. The port stays open;
// the caller owns it.
func (s *Session) Close() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// readLine returns the next complete line from the port. A serial port opened
// with a read timeout reports every quiet period as (0, io.EOF), so io.EOF is
// not terminal here: the call returns ok=false and any partial text is kept
// until its newline arrives.
func (s *Session) readLine() (string, bool, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		s.pending += line
		if err == io.EOF {
			return "", false, nil
		}
		return "", false, err
	}

	line = s.pending + line
	s.pending = ""
	return line, true, nil
}

// WaitReady consumes lines from the device until the READY banner arrives,
// logging the setup lines it passes over.
func (s *Session) WaitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		line, ok, err := s.readLine()
		if err != nil {
			return fmt.Errorf("read banner: %w", err)
		}
		if !ok {
			// Quiet period on the port; keep waiting for the banner.
			continue
		}

		line = strings.TrimSpace(line)
		if line == "READY" {
			return nil
		}
		if line != "" {
			s.log.Printf("device: %s", line)
		}
	}
	return fmt.Errorf("device did not report READY within %s", timeout)
}

// Command sends a single mode byte to the device.
func (s *Session) Command(b byte) error {
	if _, err := s.port.Write([]byte{b}); err != nil {
		return fmt.Errorf("send command %q: %w", b, err)
	}
	return nil
}

// ParseTelemetry splits a "<value>,<sensor>" telemetry line. Status lines and
// malformed input return ok=false.
func ParseTelemetry(line string) (value float64, sensor string, ok bool) {
	line = strings.TrimSpace(line)
	i := strings.LastIndexByte(line, ',')
	if i < 0 {
		return 0, "", false
	}

	value, err := strconv.ParseFloat(line[:i], 64)
	if err != nil {
		return 0, "", false
	}

	sensor = line[i+1:]
	if sensor == "" {
		return 0, "", false
	}
	return value, sensor, true
}

// Run records telemetry until ctx is canceled. An idle device produces
// nothing but read timeouts, so only ctx cancellation or a real port error
// ends the run. Telemetry lines become CSV rows stamped with the host clock;
// status lines are logged as-is.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.csv.Flush()
			return ctx.Err()
		default:
		}

		line, ok, err := s.readLine()
		if err != nil {
			s.csv.Flush()
			return fmt.Errorf("read telemetry: %w", err)
		}
		if !ok {
			// Quiet period on the port; poll ctx and try again.
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if value, sensor, ok := ParseTelemetry(line); ok {
			row := []string{
				time.Now().Format(time.RFC3339Nano),
				strconv.FormatFloat(value, 'f', -1, 64),
				sensor,
			}
			if err := s.csv.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			s.csv.Flush()
			continue
		}

		s.log.Printf("device: %s", line)
	}
}
