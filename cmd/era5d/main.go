package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

var CLI struct{}

func main() {
	// a .env in the working dir is optional; real environment variables win
	_ = godotenv.Load()

	var parser = flags.NewParser(&CLI, flags.Default)

	parser.AddCommand("api", "Run the API server", docApi, &optsAPI{})
	parser.AddCommand("worker", "Run a queue worker", docWorker, &optsWorker{})
	parser.AddCommand("inspect", "Inspect a local grid file", docInspect, &optsInspect{})
	parser.AddCommand("submit", "Submit a retrieval request", docSubmit, &optsSubmit{})
	parser.AddCommand("jobs", "List or get jobs", docJobs, &optsJobs{})
	parser.AddCommand("download", "Download the file of a completed job", docDownload, &optsDownload{})

	if _, err := parser.Parse(); err != nil {
		switch flagsErr := err.(type) {
		case flags.ErrorType:
			if flagsErr == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		default:
			os.Exit(1)
		}
	}
}
