package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yone9212/momijibot/internal/api"
	"github.com/yone9212/momijibot/internal/backend"
	"github.com/yone9212/momijibot/internal/bot"
	"github.com/yone9212/momijibot/internal/config"
	"github.com/yone9212/momijibot/internal/rules"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// System of record for rules, guilds and member messages
	store := backend.NewClient(cfg.BackendURL, cfg.APIKey)

	index := rules.NewIndex()

	// Initialize Discord bot
	discordBot, err := bot.New(cfg, store, index)
	if err != nil {
		log.Fatalf("Failed to create discord bot: %v", err)
	}

	// Initialize API server
	apiServer := api.New(cfg, discordBot.Session(), index, store, discordBot.SelfID)

	// Start Discord bot
	if err := discordBot.Start(); err != nil {
		log.Fatalf("Failed to start discord bot: %v", err)
	}
	defer discordBot.Stop()

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
}
