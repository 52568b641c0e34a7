package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/vaultshare/internal/client/cli"
	"github.com/dmitrijs2005/vaultshare/internal/client/config"
	"github.com/dmitrijs2005/vaultshare/internal/flagx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config: %v", err)
		os.Exit(2)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	err = app.Run(ctx, flagx.Positional(os.Args[1:], config.ValueFlags...))
	_ = app.Close()
	if err != nil {
		os.Exit(1)
	}
}
