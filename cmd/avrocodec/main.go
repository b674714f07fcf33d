// Package main provides the avrocodec CLI for inspecting schemas and
// converting avro payloads through the host value model.
//
// Usage:
//
//	avrocodec schema print --schema trade.avsc
//	avrocodec decode --schema trade.avsc --format BINARY --offset 5 a.bin b.bin
//	avrocodec transcode --schema trade.avsc --from BINARY --to PRETTY_JSON a.bin
package main

import (
	"fmt"
	"os"

	"github.com/Sokol111/avrocodec/internal/avrocli"
)

var version = "dev"

func main() {
	if err := avrocli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
