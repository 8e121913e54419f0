package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bakery-support-be/internal/config"
	"bakery-support-be/pkg/events"
	"bakery-support-be/pkg/nats"
)

// Tails the chatbot event stream (exchanges mirrored, tickets created,
// feedback received) and prints each event. Useful while operating the
// widget backend without digging through log files.
func main() {
	cfg := config.Load()

	sub, err := nats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("chatbot.>", "events-tail", func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		log.Printf("[%s] %s", event.EventType(), payload)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: Failed to subscribe: %v", err)
	}

	log.Println("📡 Escuchando eventos del chatbot (Ctrl+C para salir)...")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
