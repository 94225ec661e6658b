package controllers

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedClientCount() int {
	feedMu.Lock()
	defer feedMu.Unlock()
	return len(feedClients)
}

func TestOrderFeedBroadcast(t *testing.T) {
	router := gin.New()
	router.GET("/feed", OrderFeed)
	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/feed"

	// connect a few clients at once; registration and the connect log
	// share the same lock
	const clients = 3
	conns := make([]*websocket.Conn, clients)
	errs := make([]error, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if resp != nil {
				resp.Body.Close()
			}
			conns[i], errs[i] = conn, err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	defer func() {
		for _, conn := range conns {
			conn.Close()
		}
	}()

	require.Eventually(t, func() bool {
		return feedClientCount() == clients
	}, time.Second, 5*time.Millisecond)

	broadcastOrderEvent("order_paid", gin.H{"order_id": "DG-feedtest0001"})

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var got orderEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "order_paid", got.Event)
	}
}
