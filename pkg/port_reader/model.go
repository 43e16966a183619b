package port_reader

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/jacobsa/go-serial/serial"
)

type openFunc func(options serial.OpenOptions) (io.ReadWriteCloser, error)

type ChargerPort struct {
	port       string
	baudrate   uint
	serialPort io.ReadWriteCloser
	reader     *bufio.Reader
	logger     *slog.Logger

	// Bytes of a line that was cut off by the read timeout
	pending strings.Builder

	open openFunc
}
