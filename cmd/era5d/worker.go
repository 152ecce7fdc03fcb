package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/api"
)

const (
	docWorker = `Run a worker, processing retrievals enqueued by API servers.`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsArchive
}

func (c *optsWorker) Execute(args []string) error {
	defer c.setupLogging()()
	log := zap.S().Named("worker")

	qOpts, err := c.queueOptions()
	if err != nil {
		return err
	}
	if qOpts.URL == "" || c.DatabaseURL == "" {
		return fmt.Errorf("a worker needs both a queue url and a database url")
	}

	svc, err := api.New(c.registryOptions(), qOpts, c.apiOptions())
	if err != nil {
		return err
	}
	defer svc.Close()

	err = svc.Register()
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- svc.Run()
	}()
	log.Infow("worker running", "workers", qOpts.Workers)

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-exit:
		return nil
	case err := <-errs:
		return err
	}
}
