package main

import (
	"os"

	"github.com/farcloser/primordium/format"

	vocalrange "github.com/farcloser/vocalrange"
)

func outputResult(filePath string, result vocalrange.Result, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err //nolint:wrapcheck
	}

	data := &format.Data{
		Object: filePath,
		Meta:   result.ToMap(),
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout) //nolint:wrapcheck
}
