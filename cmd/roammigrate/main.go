package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/roammigrate/internal/buildinfo"
	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/config"
	"github.com/dmitrijs2005/roammigrate/internal/logging"
	"github.com/dmitrijs2005/roammigrate/internal/migrator"
	"github.com/spf13/afero"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(common.ExitOK)
		}
		log.Printf("%v", err)
		os.Exit(common.ExitFailure)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	app := migrator.NewApp(cfg, afero.NewOsFs(), os.Stdout, logger)

	os.Exit(app.Run(context.Background()))
}
