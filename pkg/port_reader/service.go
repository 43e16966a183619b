package port_reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jacobsa/go-serial/serial"
)

const (
	// The charger terminates lines with \n\r, so lines are split on \r.
	lineDelimiter = '\r'
	// Milliseconds, the driver rounds to tenths of a second
	readTimeoutMs = 1000
	// Read timeouts Connect waits through for the end of the first line
	firstLineAttempts = 5
)

var (
	ErrReadTimeout = errors.New("no complete line before read timeout")
	ErrPortClosed  = errors.New("serial port closed")
)

// Initialize a new charger connection. Nothing is opened until Connect.
func NewChargerPort(port string, baudrate uint, logger *slog.Logger) *ChargerPort {
	return &ChargerPort{
		port:     port,
		baudrate: baudrate,
		logger:   logger,
		open: func(options serial.OpenOptions) (io.ReadWriteCloser, error) {
			return serial.Open(options)
		},
	}
}

// Connect opens the port with the charger's line settings (8N1, no flow control)
// and throws away the first line, which is never valid after opening.
func (p *ChargerPort) Connect() error {
	options := serial.OpenOptions{
		PortName:              p.port,
		BaudRate:              p.baudrate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     false,
		InterCharacterTimeout: readTimeoutMs,
		MinimumReadSize:       0,
	}

	port, err := p.open(options)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	p.serialPort = port
	p.reader = bufio.NewReader(port)
	p.pending.Reset()
	p.logger.Info("connected to charger", "port", p.port, "baudrate", p.baudrate)

	p.discardFirstLine()
	return nil
}

// discardFirstLine consumes the line that was in flight when the port opened.
// Partial data is kept across timeouts until the line completes or the
// attempts run out.
func (p *ChargerPort) discardFirstLine() {
	for attempt := 1; attempt <= firstLineAttempts; attempt++ {
		line, err := p.ReadLine()
		if err == nil {
			p.logger.Debug("discarded first line", "data", line)
			return
		}
		if !errors.Is(err, ErrReadTimeout) {
			p.logger.Debug("could not read first line", "error", err)
			return
		}
	}
	p.logger.Debug("no complete first line, dropping partial data", "data", p.pending.String())
	p.pending.Reset()
}

// ReadLine returns the next line including its terminator.
// ErrReadTimeout means nothing complete arrived in time; any partial
// data is kept and prefixed to the next line.
func (p *ChargerPort) ReadLine() (string, error) {
	if p.reader == nil {
		return "", ErrPortClosed
	}

	chunk, err := p.reader.ReadString(lineDelimiter)
	p.pending.WriteString(chunk)
	switch {
	case err == nil:
		line := p.pending.String()
		p.pending.Reset()
		return line, nil
	case errors.Is(err, io.EOF):
		return "", ErrReadTimeout
	case errors.Is(err, os.ErrClosed):
		return "", ErrPortClosed
	default:
		return "", err
	}
}

func (p *ChargerPort) Close() error {
	if p.serialPort == nil {
		return nil
	}
	err := p.serialPort.Close()
	p.serialPort = nil
	p.reader = nil
	p.logger.Info("disconnected from charger", "port", p.port)
	return err
}
