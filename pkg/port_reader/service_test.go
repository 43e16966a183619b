package port_reader

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jacobsa/go-serial/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPort hands out one chunk per Read. An empty chunk, or running out
// of chunks, behaves like the driver's read timeout.
type scriptedPort struct {
	chunks []string
	closed bool
}

func (s *scriptedPort) Read(b []byte) (int, error) {
	if s.closed {
		return 0, errors.New("read on closed port")
	}
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	if chunk == "" {
		return 0, io.EOF
	}
	return copy(b, chunk), nil
}

func (s *scriptedPort) Write(b []byte) (int, error) { return len(b), nil }

func (s *scriptedPort) Close() error {
	s.closed = true
	return nil
}

func newTestPort(t *testing.T, fake *scriptedPort) (*ChargerPort, *serial.OpenOptions) {
	t.Helper()
	var used serial.OpenOptions
	p := NewChargerPort("/dev/ttyUSB9", 19200, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.open = func(options serial.OpenOptions) (io.ReadWriteCloser, error) {
		used = options
		return fake, nil
	}
	return p, &used
}

func TestConnectUsesChargerLineSettings(t *testing.T) {
	p, used := newTestPort(t, &scriptedPort{chunks: []string{"junk\n\r"}})
	require.NoError(t, p.Connect())

	assert.Equal(t, "/dev/ttyUSB9", used.PortName)
	assert.Equal(t, uint(19200), used.BaudRate)
	assert.Equal(t, uint(8), used.DataBits)
	assert.Equal(t, uint(1), used.StopBits)
	assert.Equal(t, serial.PARITY_NONE, used.ParityMode)
	assert.False(t, used.RTSCTSFlowControl)
	assert.Equal(t, uint(readTimeoutMs), used.InterCharacterTimeout)
}

func TestReadLineDiscardsFirstLineAndJoinsPartials(t *testing.T) {
	fake := &scriptedPort{chunks: []string{"junk\n\r", "a;b", "", ";c\n\r", "d;\n\re;"}}
	p, _ := newTestPort(t, fake)
	require.NoError(t, p.Connect())

	_, err := p.ReadLine()
	require.ErrorIs(t, err, ErrReadTimeout)

	line, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "a;b;c\n\r", line)

	line, err = p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "d;\n\r", line)

	_, err = p.ReadLine()
	require.ErrorIs(t, err, ErrReadTimeout)
}

func TestConnectWaitsForRestOfFirstLine(t *testing.T) {
	p, _ := newTestPort(t, &scriptedPort{chunks: []string{"half a li", "", "", "ne\n\r", "x\n\r"}})
	require.NoError(t, p.Connect())

	line, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "x\n\r", line)
}

func TestConnectGivesUpOnFirstLine(t *testing.T) {
	// The first read returns the partial chunk and one timeout, each later
	// attempt consumes one more timeout.
	chunks := []string{"half a li"}
	for range firstLineAttempts {
		chunks = append(chunks, "")
	}
	chunks = append(chunks, "x\n\r")

	p, _ := newTestPort(t, &scriptedPort{chunks: chunks})
	require.NoError(t, p.Connect())

	line, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "x\n\r", line)
}

func TestReadLineAfterClose(t *testing.T) {
	fake := &scriptedPort{chunks: []string{"junk\n\r"}}
	p, _ := newTestPort(t, fake)
	require.NoError(t, p.Connect())
	require.NoError(t, p.Close())
	assert.True(t, fake.closed)

	_, err := p.ReadLine()
	assert.ErrorIs(t, err, ErrPortClosed)
	assert.NoError(t, p.Close())
}

func TestConnectFailure(t *testing.T) {
	p := NewChargerPort("/dev/ttyUSB9", 19200, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.open = func(serial.OpenOptions) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such file or directory")
	}
	err := p.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open serial port")

	_, err = p.ReadLine()
	assert.ErrorIs(t, err, ErrPortClosed)
}
