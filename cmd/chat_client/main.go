package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminchat/client"
	"adminchat/models"
)

type Config struct {
	BaseURL      string
	CallerID     int64
	TargetUserID int64
	IntervalSec  int
}

// consoleRenderer печатает переписку в терминал в формате выгрузки:
// разделители дат и строки [время] отправитель: текст
type consoleRenderer struct {
	selfID int64
}

func (r *consoleRenderer) RenderDateSeparator(date string) {
	fmt.Printf("--- %s ---\n", date)
}

func (r *consoleRenderer) RenderMessage(msg models.Message) {
	sender := "Them"
	if msg.SenderID == r.selfID {
		sender = "You"
	}
	fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("3:04 pm"), sender, msg.Body)
}

func main() {
	config := parseFlags()

	var chat *client.HTTPChat
	if config.TargetUserID > 0 {
		chat = client.NewAdminChat(config.BaseURL, config.CallerID, config.TargetUserID)
	} else {
		chat = client.NewUserChat(config.BaseURL, config.CallerID)
	}

	interval := time.Duration(config.IntervalSec) * time.Second
	poller := client.NewPoller(chat, &consoleRenderer{selfID: config.CallerID}, interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// Ввод построчно: каждая строка уходит как одно сообщение
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := poller.Send(ctx, line); err != nil {
				log.Printf("Send failed: %v", err)
			}
		}
	}()

	poller.Run(ctx)
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080", "Chat service URL")
	flag.Int64Var(&config.CallerID, "user", 0, "Caller user ID")
	flag.Int64Var(&config.TargetUserID, "target", 0, "Target user ID (admin surface; 0 for the user surface)")
	flag.IntVar(&config.IntervalSec, "interval", 10, "Poll interval in seconds")

	flag.Parse()

	if config.CallerID == 0 {
		log.Fatal("-user is required")
	}
	return config
}
