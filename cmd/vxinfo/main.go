// Command vxinfo prints the dtype and row count of a Vortex file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vortexdb/vortex/vortex"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: vxinfo <uri>")
		os.Exit(1)
	}

	uri := os.Args[1]
	ctx := context.Background()

	f, err := vortex.Open(ctx, uri)
	if err != nil {
		fmt.Printf("ERROR: failed to open %q: %v\n", uri, err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("=== %s ===\n\n", uri)
	fmt.Printf("dtype: %s\n", f.DType())

	stream, err := f.Scan(ctx, vortex.ScanOptions{})
	if err != nil {
		fmt.Printf("ERROR: scan failed: %v\n", err)
		os.Exit(1)
	}

	var rows uint64
	var chunks int
	for chunk, err := range stream {
		if err != nil {
			fmt.Printf("ERROR: reading chunk: %v\n", err)
			os.Exit(1)
		}
		rows += chunk.Range.Len()
		chunks++
	}
	fmt.Printf("rows: %d\n", rows)
	fmt.Printf("chunks: %d\n", chunks)
}
