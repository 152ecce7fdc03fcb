package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voidshard/era5d/pkg/structs"
)

const (
	docJobs     = `List jobs known to an API server, or get one by id.`
	docDownload = `Download the file of a completed job.`
)

type optsJobs struct {
	optsGeneral
	optsClient

	Limit    int      `long:"limit" description:"Max jobs to list (0 for all)"`
	Offset   int      `long:"offset" description:"Jobs to skip"`
	Statuses []string `long:"status" short:"s" description:"Only list jobs with these statuses"`

	Args struct {
		ID string `positional-arg-name:"ID"`
	} `positional-args:"yes"`
}

func (c *optsJobs) Execute(args []string) error {
	defer c.setupLogging()()

	cli, err := c.client()
	if err != nil {
		return err
	}

	if c.Args.ID != "" {
		job, err := cli.Job(c.Args.ID)
		if err != nil {
			return err
		}
		return printJSON(job)
	}

	q := &structs.Query{Limit: c.Limit, Offset: c.Offset}
	for _, s := range c.Statuses {
		st := structs.ToStatus(s)
		if st == "" {
			return fmt.Errorf("unknown status %q", s)
		}
		q.Statuses = append(q.Statuses, st)
	}

	jobs, err := cli.Jobs(q)
	if err != nil {
		return err
	}
	return printJSON(jobs)
}

type optsDownload struct {
	optsGeneral
	optsClient

	Output string `long:"output" short:"o" description:"File to write (default: era5_{id}.download in the working dir)"`

	Args struct {
		ID string `positional-arg-name:"ID" required:"yes"`
	} `positional-args:"yes"`
}

func (c *optsDownload) Execute(args []string) error {
	defer c.setupLogging()()

	cli, err := c.client()
	if err != nil {
		return err
	}

	out := c.Output
	if out == "" {
		out = fmt.Sprintf("era5_%s.download", filepath.Base(c.Args.ID))
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = cli.Download(c.Args.ID, f)
	cerr := f.Close()
	if err != nil {
		os.Remove(out)
		return err
	}
	if cerr != nil {
		return cerr
	}
	fmt.Println(out)
	return nil
}
