package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileFlushInterval = 2 * time.Second

// AsyncFileWriter moves log writes off the request path. Lines go through a
// buffered channel to a single writer goroutine; when the channel is full the
// line is dropped rather than blocking the caller.
type AsyncFileWriter struct {
	file  *os.File
	buf   *bufio.Writer
	lines chan []byte
	done  chan struct{}
	wg    sync.WaitGroup
}

func NewAsyncFileWriter(path string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	w := &AsyncFileWriter{
		file:  file,
		buf:   bufio.NewWriterSize(file, bufferSize),
		lines: make(chan []byte, 1000),
		done:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.drain()

	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case w.lines <- line:
		return len(p), nil
	default:
		return 0, nil
	}
}

func (w *AsyncFileWriter) drain() {
	defer w.wg.Done()

	ticker := time.NewTicker(fileFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case line := <-w.lines:
			_, _ = w.buf.Write(line)
		case <-ticker.C:
			_ = w.buf.Flush()
		case <-w.done:
			for len(w.lines) > 0 {
				_, _ = w.buf.Write(<-w.lines)
			}
			_ = w.buf.Flush()
			return
		}
	}
}

// Close flushes buffered lines and closes the underlying file.
func (w *AsyncFileWriter) Close() error {
	close(w.done)
	w.wg.Wait()
	return w.file.Close()
}
