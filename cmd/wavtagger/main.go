// This command line tool tags wav files with broadcast-wave metadata.
// Files are patched in place: when the new metadata fits the existing bext
// chunk the update is constant-size, otherwise the file is rebuilt and
// atomically replaced.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/bwav"
)

var (
	flagFileToTag = flag.String("file", "", "Path to the wave file to tag")
	flagDirToTag  = flag.String("dir", "", "Directory containing all the wav files to tag")
	//
	flagDescription   = flag.String("description", "", "Broadcast description")
	flagOriginator    = flag.String("originator", "", "Originating entity")
	flagOriginatorRef = flag.String("originator-ref", "", "Originator reference")
	flagTimeReference = flag.Int64("time-reference", 0, "Time reference in samples since midnight")
	flagCodingHistory = flag.String("coding-history", "", "Coding history text")
)

func main() {
	flag.Parse()

	if *flagFileToTag == "" && *flagDirToTag == "" {
		fmt.Println("You need to pass -file or -dir to indicate what file or folder content to tag.")
		os.Exit(1)
	}

	if *flagFileToTag != "" {
		err := tagFile(*flagFileToTag)
		if err != nil {
			fmt.Printf("Something went wrong when tagging %s - error: %v\n", *flagFileToTag, err)
			os.Exit(1)
		}
	}

	if *flagDirToTag != "" {
		fileInfos, _ := os.ReadDir(*flagDirToTag)
		for _, fi := range fileInfos {
			if !strings.HasPrefix(strings.ToLower(filepath.Ext(fi.Name())), ".wav") {
				continue
			}

			filePath := filepath.Join(*flagDirToTag, fi.Name())

			err := tagFile(filePath)
			if err != nil {
				fmt.Printf("Something went wrong tagging %s - %v\n", filePath, err)
			}
		}
	}
}

// tagFile stamps the flag-provided broadcast metadata onto the wav file at
// path, patching it in place.
func tagFile(path string) error {
	meta := bwav.NewBroadcastMetadata(
		*flagDescription,
		*flagOriginator,
		*flagOriginatorRef,
		time.Now(),
		*flagTimeReference,
		*flagCodingHistory)

	return bwav.ReplaceMetadataInFile(path, meta)
}
