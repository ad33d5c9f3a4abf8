package logger

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncConsoleHook mirrors every entry to stdout without blocking the
// logging call. Entries are dropped when the buffer is full.
type AsyncConsoleHook struct {
	lines chan string
	done  chan struct{}
	wg    sync.WaitGroup
}

func NewAsyncConsoleHook(bufferSize int) *AsyncConsoleHook {
	h := &AsyncConsoleHook{
		lines: make(chan string, bufferSize),
		done:  make(chan struct{}),
	}
	h.wg.Add(1)
	go h.drain()

	return h
}

func (h *AsyncConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	select {
	case h.lines <- line:
	default:
	}
	return nil
}

func (h *AsyncConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *AsyncConsoleHook) drain() {
	defer h.wg.Done()

	for {
		select {
		case line := <-h.lines:
			fmt.Print(line)
		case <-h.done:
			for len(h.lines) > 0 {
				fmt.Print(<-h.lines)
			}
			return
		}
	}
}

func (h *AsyncConsoleHook) Close() {
	close(h.done)
	h.wg.Wait()
}
