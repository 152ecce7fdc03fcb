package main

import (
	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/api"
	"github.com/voidshard/era5d/pkg/api/http/server"
)

const (
	docApi = `Run the API server.

With no queue URL retrievals run in this process on a worker pool. With a queue
URL requests are only enqueued, and 'era5d worker' processes do the work (they
must share a database with this server).`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsArchive

	Addr    string   `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`
	Origins []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," description:"Allowed browser origins (default: local dev servers)"`
}

func (c *optsAPI) Execute(args []string) error {
	defer c.setupLogging()()
	log := zap.S().Named("api")

	qOpts, err := c.queueOptions()
	if err != nil {
		return err
	}
	if qOpts.URL != "" && c.DatabaseURL == "" {
		log.Warnw("queue configured without a database, workers in other processes won't see jobs")
	}

	svc, err := api.New(c.registryOptions(), qOpts, c.apiOptions())
	if err != nil {
		return err
	}
	defer svc.Close()

	if qOpts.URL == "" {
		err = svc.Register()
		if err != nil {
			return err
		}
		go func() {
			if err := svc.Run(); err != nil {
				log.Errorw("worker pool stopped", "err", err)
			}
		}()
	}

	s := server.NewServer(c.Addr, c.Origins)
	return s.ServeForever(svc)
}
