package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"layoverlink/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Small ops CLI for inspecting live sessions. Read-only: sessions are
// destroyed by expiry alone, so there is no delete command.
func main() {
	_ = godotenv.Load()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	store := storage.NewService(rdb)
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <list|show|messages> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		if err := listSessions(ctx, store); err != nil {
			log.Fatalf("Error listing sessions: %v", err)
		}
	case "show":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin show <session_id>")
			os.Exit(1)
		}
		if err := showSession(ctx, store, os.Args[2]); err != nil {
			log.Fatalf("Error showing session: %v", err)
		}
	case "messages":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin messages <session_id> [limit]")
			os.Exit(1)
		}
		limit := 0
		if len(os.Args) > 3 {
			var err error
			limit, err = strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid limit. Please provide an integer.")
				os.Exit(1)
			}
		}
		if err := showMessages(ctx, store, os.Args[2], limit); err != nil {
			log.Fatalf("Error showing messages: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func listSessions(ctx context.Context, store *storage.Service) error {
	sessionIDs, err := store.ScanSessionIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range sessionIDs {
		sess, err := store.GetSession(ctx, id)
		if err != nil {
			// Expired between scan and read.
			continue
		}
		ttl, err := store.SessionTTL(ctx, id)
		if err != nil {
			continue
		}
		fmt.Printf("%s  members=%d  expires in %s\n", id, len(sess.Members), ttl.Round(time.Second))
	}
	fmt.Printf("%d live session(s)\n", len(sessionIDs))
	return nil
}

func showSession(ctx context.Context, store *storage.Service, sessionID string) error {
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	ttl, err := store.SessionTTL(ctx, sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("session: %s\ncreated: %s\nexpires: %s (in %s)\nduration: %dm\npin set: %v\n",
		sess.SessionID,
		time.UnixMilli(sess.CreatedAt).Format(time.RFC3339),
		time.UnixMilli(sess.ExpiresAt).Format(time.RFC3339),
		ttl.Round(time.Second),
		sess.Duration,
		sess.PIN != "",
	)
	fmt.Printf("members (%d):\n", len(sess.Members))
	for _, m := range sess.Members {
		fmt.Printf("  %s  %s (%s)  sharing=%v\n", m.UserID, m.Name, m.Airline, m.LocationSharing)
	}
	return nil
}

func showMessages(ctx context.Context, store *storage.Service, sessionID string, limit int) error {
	messages, err := store.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		ts := time.UnixMilli(msg.Timestamp).Format("15:04:05")
		switch msg.Type {
		case "image":
			fmt.Printf("[%s] %s: <image %d bytes>\n", ts, msg.Name, len(msg.ImageData))
		default:
			fmt.Printf("[%s] %s: %s\n", ts, msg.Name, msg.Message)
		}
	}
	fmt.Printf("%d message(s)\n", len(messages))
	return nil
}
