package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/bwav"
)

const blockFrames = 1024

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	bitDepth := flagSet.Int("bits", 16, "bit depth of the output file (8, 16, 24 or 32)")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	const sampleRate = 48000

	wavOut, err := bwav.NewWriter(file, sampleRate, 1, *bitDepth, nil)
	if err != nil {
		return err
	}

	numSamples := int(sampleRate * *length)
	block := make([]int32, blockFrames)

	for written := 0; written < numSamples; {
		n := min(blockFrames, numSamples-written)

		for i := 0; i < n; i++ {
			fv := math.Sin(float64(written+i) / sampleRate * *frequency * 2 * math.Pi)

			if *bitDepth == 32 {
				// 32-bit files are IEEE float, pass the bits through
				block[i] = int32(math.Float32bits(float32(fv)))
			} else {
				// scale into the canonical 32-bit domain
				block[i] = int32(fv * float64(math.MaxInt32))
			}
		}

		err := wavOut.WriteSamples([][]int32{block[:n]}, n)
		if err != nil {
			return err
		}

		written += n
	}

	return wavOut.Close()
}
