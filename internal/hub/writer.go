package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/zaidrahmann/sportz-websockets/internal/metrics"
)

const (
	writeDeadline  = 5 * time.Second
	sendBufferSize = 16
)

type outFrame struct {
	messageType int
	data        []byte
}

// clientWriter serializes all writes to one connection through a single
// goroutine. Data frames and heartbeat pings share the same channel so
// they can never interleave mid-write.
type clientWriter struct {
	connection *websocket.Conn
	clock      clockwork.Clock
	sendCh     chan outFrame
	doneCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

func newClientWriter(connection *websocket.Conn, clock clockwork.Clock) *clientWriter {
	cw := &clientWriter{
		connection: connection,
		clock:      clock,
		sendCh:     make(chan outFrame, sendBufferSize),
		doneCh:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	defer cw.wg.Done()

	for {
		select {
		case frame := <-cw.sendCh:
			start := cw.clock.Now()
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(frame.messageType, frame.data); err != nil {
				if frame.messageType == websocket.PingMessage {
					metrics.WebSocketPingFailures.Inc()
				}
				return
			}
			if frame.messageType == websocket.TextMessage {
				metrics.WebSocketMessageSendDuration.Observe(cw.clock.Since(start).Seconds())
			}
		case <-cw.doneCh:
			return
		}
	}
}

// trySend enqueues a text frame without blocking. Returns false when the
// buffer is full, which the hub treats as a slow client.
func (cw *clientWriter) trySend(data []byte) bool {
	select {
	case cw.sendCh <- outFrame{messageType: websocket.TextMessage, data: data}:
		return true
	default:
		return false
	}
}

// tryPing enqueues a heartbeat ping without blocking. A full buffer is
// fine: the peer is already behind and the next sweep will judge it.
func (cw *clientWriter) tryPing() bool {
	select {
	case cw.sendCh <- outFrame{messageType: websocket.PingMessage}:
		return true
	default:
		return false
	}
}

func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.doneCh)
		_ = cw.connection.Close()
	})
	cw.wg.Wait()
}

// stopGraceful sends a close frame with the given code and reason before
// closing the connection. The writer goroutine must exit first so the
// close frame never races a data frame.
func (cw *clientWriter) stopGraceful(code int, reason string) {
	cw.stopOnce.Do(func() {
		close(cw.doneCh)
		cw.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(code, reason)
		cw.updateWriteDeadline()
		_ = cw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = cw.connection.Close()
	})
	cw.wg.Wait()
}

func (cw *clientWriter) updateWriteDeadline() {
	_ = cw.connection.SetWriteDeadline(cw.clock.Now().Add(writeDeadline))
}
