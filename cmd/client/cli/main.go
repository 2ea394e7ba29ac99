package main

import (
	"context"
	"log"

	"github.com/pantrysync/restock/internal/client/cli"
	"github.com/pantrysync/restock/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, nil)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())

}
