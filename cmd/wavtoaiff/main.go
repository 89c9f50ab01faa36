// This tool converts a wav file into an identical aiff file and stores it
// in the same folder as the source.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/bwav"
	"github.com/go-audio/aiff"
)

var flagPath = flag.String("path", "", "The path to the wav file to convert to aiff")

func main() {
	flag.Parse()

	if *flagPath == "" {
		fmt.Println("You must set the -path flag")
		os.Exit(1)
	}

	usr, err := user.Current()
	if err != nil {
		log.Println("Failed to get the user home directory")
		os.Exit(1)
	}

	sourcePath := *flagPath
	if strings.HasPrefix(sourcePath, "~/") {
		sourcePath = strings.Replace(sourcePath, "~", usr.HomeDir, 1)
	}

	if err := convert(sourcePath); err != nil {
		log.Fatal(err)
	}
}

func convert(sourcePath string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", sourcePath, err)
	}
	defer file.Close()

	d, err := bwav.NewReader(file)
	if err != nil {
		return fmt.Errorf("invalid WAV file: %w", err)
	}

	buf, err := d.FullBuffer()
	if err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}

	outPath := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	encoder := aiff.NewEncoder(outFile, int(d.SampleRate), int(d.BitDepth), int(d.NumChans))

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write aiff samples: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", outPath, err)
	}

	fmt.Printf("Wav file converted to %s\n", outPath)

	return nil
}
