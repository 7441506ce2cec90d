package main

import (
	"context"
	"log"
	"os"

	"github.com/ajudae/go-client/internal/buildinfo"
	"github.com/ajudae/go-client/internal/client/cli"
	"github.com/ajudae/go-client/internal/client/config"
	"github.com/ajudae/go-client/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg, logging.NewDefault())

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
