// This tool prints the format and metadata of the passed wav file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/bwav"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	d, err := bwav.NewReader(file)
	if err != nil {
		return err
	}

	format := "PCM"
	if d.FloatingPoint {
		format = "IEEE float"
	}

	fmt.Fprintf(out, "Format: %s\n", format)
	fmt.Fprintf(out, "Channels: %d\n", d.NumChans)
	fmt.Fprintf(out, "Sample rate: %d Hz\n", d.SampleRate)
	fmt.Fprintf(out, "Bit depth: %d\n", d.BitDepth)
	fmt.Fprintf(out, "Samples: %d\n", d.NumSamples)
	fmt.Fprintf(out, "Duration: %s\n", d.Duration())

	if d.Metadata == nil {
		fmt.Fprintln(out, "No metadata present")

		return nil
	}

	fmt.Fprintln(out, "Metadata:")

	for _, key := range d.Metadata.Keys() {
		fmt.Fprintf(out, "\t%s: %s\n", key, d.Metadata.Get(key))
	}

	return nil
}
