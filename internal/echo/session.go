package echo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	// DefaultBufSize is the size of a single read.
	DefaultBufSize = 1024

	// DefaultPayload is the message the client sends.
	DefaultPayload = "Hello, world"
)

// Stats summarizes a served session.
type Stats struct {
	// Chunks is the number of non-empty reads echoed back.
	Chunks int

	// Bytes is the total number of bytes echoed.
	Bytes int64
}

// Serve echoes everything read from rw back to rw in chunks of at most
// bufSize bytes. It returns when a read reports io.EOF (orderly peer
// shutdown) or on the first read/write error.
func Serve(rw io.ReadWriter, bufSize int, logger *slog.Logger) (Stats, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	var stats Stats
	buf := make([]byte, bufSize)

	for {
		n, err := rw.Read(buf)
		if n > 0 {
			logger.Debug("read from peer", slog.Int("bytes", n))

			if _, werr := rw.Write(buf[:n]); werr != nil {
				return stats, fmt.Errorf("echo %d bytes: %w", n, werr)
			}
			stats.Chunks++
			stats.Bytes += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read from peer: %w", err)
		}
	}
}

// Exchange writes payload to rw once and returns the first chunk read
// back, at most bufSize bytes.
func Exchange(rw io.ReadWriter, payload []byte, bufSize int) ([]byte, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	if _, err := rw.Write(payload); err != nil {
		return nil, fmt.Errorf("send payload: %w", err)
	}

	buf := make([]byte, bufSize)
	n, err := rw.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return buf[:n], nil
}
