package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/vaultshare/internal/server"
	"github.com/dmitrijs2005/vaultshare/internal/server/config"
)

// loadConfig turns the loader's panics on unreadable or malformed sources
// into an error, so a bad .env or JSON file ends with a message rather than
// a stack trace.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return config.LoadConfig(), nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("config: %v", err)
		os.Exit(2)
	}

	app, err := server.NewApp(context.Background(), cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
