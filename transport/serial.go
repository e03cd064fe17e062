package transport

import (
	"context"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/arloliu/go-alicat/internal/pool"
)

// serialDialer opens a directly-connected RS-232/RS-485 serial device.
type serialDialer struct {
	path    string
	mode    *serial.Mode
	timeout time.Duration
}

func newSerialDialer(cfg *Config) *serialDialer {
	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: cfg.dataBits,
	}

	switch cfg.stopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}

	switch cfg.parity {
	case ParityOdd:
		mode.Parity = serial.OddParity
	case ParityEven:
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	return &serialDialer{
		path:    cfg.address,
		mode:    mode,
		timeout: cfg.timeout,
	}
}

type openResult struct {
	port serial.Port
	err  error
}

// dial opens the serial port with a bounded timeout. serial.Open has no
// context support, so the open runs in a goroutine and a late success after
// timeout or cancellation is closed in the background.
func (d *serialDialer) dial(ctx context.Context) (lineConn, error) {
	resultChan := make(chan openResult, 1)
	go func() {
		port, err := serial.Open(d.path, d.mode)
		resultChan <- openResult{port: port, err: err}
	}()

	timer := pool.GetTimer(d.timeout)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		go discardLateOpen(resultChan)
		return nil, ctx.Err()

	case <-timer.C:
		go discardLateOpen(resultChan)
		return nil, os.ErrDeadlineExceeded

	case result := <-resultChan:
		if result.err != nil {
			return nil, result.err
		}

		return &serialConn{port: result.port}, nil
	}
}

func discardLateOpen(resultChan <-chan openResult) {
	result := <-resultChan
	if result.err == nil {
		_ = result.port.Close()
	}
}

type serialConn struct {
	port serial.Port
}

func (c *serialConn) Read(p []byte) (int, error) {
	n, err := c.port.Read(p)
	if n == 0 && err == nil {
		// go.bug.st/serial reports a read timeout as (0, nil); surface it as
		// a deadline error so buffered readers don't spin on empty reads.
		return 0, os.ErrDeadlineExceeded
	}

	return n, err
}

func (c *serialConn) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

func (c *serialConn) Close() error {
	return c.port.Close()
}

func (c *serialConn) setReadTimeout(d time.Duration) error {
	return c.port.SetReadTimeout(d)
}
