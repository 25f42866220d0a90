package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitSubscribed(t *testing.T, h *Hub, marketID string) {
	t.Helper()
	for i := 0; i < 200; i++ {
		h.mu.RLock()
		n := len(h.subs[marketID])
		h.mu.RUnlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscription for %s was not registered", marketID)
}

func TestHub_SubscriberReceivesBroadcast(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "m1"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitSubscribed(t, hub, "m1")

	hub.Broadcast(MarketUpdate{MarketID: "m1", Payload: map[string]string{"odds": "2.15"}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var got MarketUpdate
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.MarketID != "m1" {
		t.Fatalf("marketId = %q, esperado m1", got.MarketID)
	}
}

// Broadcast concorrendo com subscribe/unsubscribe não pode tocar o mapa vivo
// de assinaturas; rodar com -race cobre a iteração e as escritas por conexão.
func TestHub_BroadcastConcurrentWithSubscriptionChurn(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		conn := dialHub(t, srv)
		defer conn.Close()

		// drena o que o hub mandar pra conexão não travar
		go func(c *websocket.Conn) {
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}(conn)

		wg.Add(1)
		go func(c *websocket.Conn) {
			defer wg.Done()
			for j := 0; ; j++ {
				select {
				case <-done:
					return
				default:
				}
				msg := ClientMsg{Type: "subscribe", MarketID: "m1"}
				if j%2 == 1 {
					msg.Type = "unsubscribe"
				}
				if err := c.WriteJSON(msg); err != nil {
					return
				}
			}
		}(conn)
	}

	for i := 0; i < 500; i++ {
		hub.Broadcast(MarketUpdate{MarketID: "m1", Payload: map[string]int{"seq": i}})
	}
	close(done)
	wg.Wait()
}
