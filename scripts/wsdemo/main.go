// Command wsdemo is an interactive client for manual smoke tests against a
// running relay: it sends each stdin line as a {session, text} frame and
// prints incoming events.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatrelay-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("wsdemo: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	session := flag.String("session", "", "opaque session token (from /api/login)")
	flag.Parse()

	if *session == "" {
		return errors.New("a -session token is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	go func() {
		for {
			var event proto.ChatEvent
			if err := wsjson.Read(ctx, conn, &event); err != nil {
				cancel()
				return
			}
			switch event.UsrFrom {
			case "CLEAR":
				fmt.Println("*** chat history cleared ***")
			case "PANIC":
				fmt.Println("*** panic signal received ***")
			default:
				fmt.Printf("<%s> %s\n", event.UsrFrom, event.Message)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Session: *session, Text: text}); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}

	return scanner.Err()
}
