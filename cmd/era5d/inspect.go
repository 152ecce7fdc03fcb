package main

import (
	"github.com/voidshard/era5d/pkg/grid"
)

const (
	docInspect = `Print the metadata of a local netCDF file as JSON, or with --variable a 2D
slice of one variable.`
)

type optsInspect struct {
	optsGeneral

	Variable string   `long:"variable" short:"v" description:"Extract a slice of this variable"`
	TimeStep int      `long:"time-step" short:"t" default:"0" description:"Time index of the slice"`
	Level    *float64 `long:"level" short:"l" description:"Level of the slice (nearest is used)"`
	Full     bool     `long:"full" description:"Include arrays over the inline size limit"`

	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes"`
}

func (c *optsInspect) Execute(args []string) error {
	defer c.setupLogging()()

	insp := grid.NewInspector()
	if c.Variable == "" {
		meta, err := insp.ParseFile(c.Args.File)
		if err != nil {
			return err
		}
		return printJSON(meta)
	}

	slice, err := insp.ExtractFile(c.Args.File, c.Variable, c.TimeStep, c.Level, c.Full)
	if err != nil {
		return err
	}
	return printJSON(slice)
}
