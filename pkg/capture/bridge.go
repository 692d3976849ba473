package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // frame decoding
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dixieflatline76/Passfoto/util/log"
)

// bridgeAddr is loopback only; the phone reaches it over adb or local wifi
// port forwarding, never the open network.
const bridgeAddr = "127.0.0.1:49453"

// frameStaleAfter bounds how old a bridge frame may be before the session is
// told there is no usable frame.
const frameStaleAfter = 2 * time.Second

// BridgeSource runs a local WebSocket endpoint that a companion phone app
// streams camera frames into as binary JPEG messages. The latest decoded
// frame is kept in memory and handed to the session on demand.
type BridgeSource struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	frameMu    sync.RWMutex
	frame      image.Image
	frameTaken time.Time
}

// NewBridgeSource creates the bridge endpoint without starting it.
func NewBridgeSource() *BridgeSource {
	b := &BridgeSource{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
	b.mux.HandleFunc("/health", b.handleHealth)
	b.mux.HandleFunc("/ws", b.handleWebSocket)
	return b
}

// Start listens on the loopback bridge port. Blocking.
func (b *BridgeSource) Start() error {
	b.httpServer = &http.Server{
		Addr:    bridgeAddr,
		Handler: b.mux,
	}
	return b.httpServer.ListenAndServe()
}

// Stop shuts the endpoint down and disconnects all phones.
func (b *BridgeSource) Stop() error {
	if b.httpServer != nil {
		return b.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (b *BridgeSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (b *BridgeSource) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge upgrade failed: %v", err)
		return
	}

	b.clientsMu.Lock()
	b.clients[conn] = true
	b.clientsMu.Unlock()
	log.Printf("bridge client connected: %s", conn.RemoteAddr())

	go b.readFrames(conn)
}

// readFrames pumps binary frame messages from one phone until it disconnects.
func (b *BridgeSource) readFrames(conn *websocket.Conn) {
	defer func() {
		b.clientsMu.Lock()
		delete(b.clients, conn)
		b.clientsMu.Unlock()
		conn.Close()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			log.Debugf("bridge client gone: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue // text messages are control chatter, ignored for now
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			log.Debugf("bridge frame decode failed: %v", err)
			continue
		}

		b.frameMu.Lock()
		b.frame = img
		b.frameTaken = time.Now()
		b.frameMu.Unlock()
	}
}

// Connected reports whether at least one phone is streaming.
func (b *BridgeSource) Connected() bool {
	b.clientsMu.Lock()
	defer b.clientsMu.Unlock()
	return len(b.clients) > 0
}

// Frame returns the latest streamed frame, rejecting stale ones.
func (b *BridgeSource) Frame(_ context.Context) (image.Image, error) {
	b.frameMu.RLock()
	defer b.frameMu.RUnlock()
	if b.frame == nil {
		return nil, fmt.Errorf("no frame received from bridge yet")
	}
	if time.Since(b.frameTaken) > frameStaleAfter {
		return nil, fmt.Errorf("bridge frame is stale")
	}
	return b.frame, nil
}
