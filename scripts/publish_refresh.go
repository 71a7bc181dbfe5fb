// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type mapRefreshEvent struct {
	Year        int       `json:"year"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	year := flag.Int("year", 2024, "Year to refresh")
	reason := flag.String("reason", "manual", "Why the year is refreshed")
	wait := flag.Duration("wait", 30*time.Second, "How long to wait for stream:map:refreshed")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// запоминаем конец стрима ответов до публикации
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, "stream:map:refreshed", "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	data, err := json.Marshal(mapRefreshEvent{
		Year:        *year,
		Reason:      *reason,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:map:refresh",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: stream:map:refresh\n")
	fmt.Printf("   Message ID: %s\n", id)
	fmt.Printf("   Year: %d\n", *year)
	fmt.Printf("\nWaiting for stream:map:refreshed...\n")

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{"stream:map:refreshed", lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read responses: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var response map[string]interface{}
				if err := json.Unmarshal([]byte(dataStr), &response); err != nil {
					continue
				}
				if y, ok := response["year"].(float64); ok && int(y) == *year {
					pretty, _ := json.MarshalIndent(response, "", "  ")
					fmt.Printf("\nResponse received:\n%s\n", pretty)
					return
				}
			}
		}
	}
	fmt.Println("Timeout waiting for response")
}
