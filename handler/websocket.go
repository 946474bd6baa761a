package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"cinema_storefront/flow"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient = redis.NewClient(&redis.Options{Addr: redisAddr()})

	clients = make(map[uint]map[*websocket.Conn]bool)
	mu      sync.Mutex
)

func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// PublishRedemptionEvent pushes a redemption onto the cinema's channel so
// every connected staff dashboard sees it live.
func PublishRedemptionEvent(cinemaId uint, ev flow.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := redisClient.Publish(
		context.Background(),
		fmt.Sprintf("redemption:%d", cinemaId),
		payload,
	).Err(); err != nil {
		log.Printf("publish redemption event: %v", err)
	}
}

// RedemptionFeed streams redemption events for one cinema over a websocket.
func RedemptionFeed(c *websocket.Conn) {
	cinemaIdStr := c.Params("cinemaId")
	id64, _ := strconv.ParseUint(cinemaIdStr, 10, 64)
	cinemaId := uint(id64)

	defer func() {
		mu.Lock()
		if clients[cinemaId] != nil {
			delete(clients[cinemaId], c)
		}
		mu.Unlock()
		c.Close()
	}()

	mu.Lock()
	if clients[cinemaId] == nil {
		clients[cinemaId] = make(map[*websocket.Conn]bool)
	}
	clients[cinemaId][c] = true
	mu.Unlock()

	pubsub := redisClient.Subscribe(
		context.Background(),
		fmt.Sprintf("redemption:%d", cinemaId),
	)
	defer pubsub.Close()

	channel := pubsub.Channel()

	for msg := range channel {
		payload := []byte(msg.Payload)

		mu.Lock()
		for conn := range clients[cinemaId] {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(clients[cinemaId], conn)
			}
		}
		mu.Unlock()
	}
}
