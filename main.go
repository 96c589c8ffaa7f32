package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/jvatic/opustags/internal/common"
	"github.com/jvatic/opustags/internal/config"
	"github.com/jvatic/opustags/internal/runner"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("Error: %v", err)
	}

	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Errorf("%v (see --help)", err)
		os.Exit(1)
	}
	if opts.Help {
		config.Usage(os.Stdout)
		return
	}

	ctx := common.InitShutdownSignals(context.Background())
	if err := runner.Run(ctx, opts); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
