package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/structs"
)

const (
	docSubmit = `Submit a retrieval request read from a JSON file ("-" for stdin) to an API server.`
)

type optsSubmit struct {
	optsGeneral
	optsClient

	Code bool          `long:"code" description:"Print example python client code for the request instead of submitting it"`
	Wait time.Duration `long:"wait" description:"Poll the job every interval until it finishes (0 to return at once)"`

	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (c *optsSubmit) Execute(args []string) error {
	defer c.setupLogging()()

	req, err := readRequest(c.Args.File)
	if err != nil {
		return err
	}
	cli, err := c.client()
	if err != nil {
		return err
	}

	if c.Code {
		code, err := cli.GenerateCode(req)
		if err != nil {
			return err
		}
		fmt.Print(code)
		return nil
	}

	job, err := cli.SubmitRequest(req)
	if err != nil {
		return err
	}
	if c.Wait <= 0 {
		return printJSON(job)
	}

	log := zap.S().Named("submit").With("job", job.ID)
	tick := jitterbug.New(c.Wait, &jitterbug.Norm{Stdev: c.Wait / 10})
	defer tick.Stop()
	for !structs.IsFinalStatus(job.Status) {
		<-tick.C
		job, err = cli.Job(job.ID)
		if err != nil {
			return err
		}
		log.Infow("waiting", "status", job.Status, "progress", job.Progress)
	}
	return printJSON(job)
}

func readRequest(path string) (*structs.RetrievalRequest, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}

	req := &structs.RetrievalRequest{}
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	err := dec.Decode(req)
	if err != nil {
		return nil, fmt.Errorf("reading request %s: %w", path, err)
	}
	return req, nil
}
