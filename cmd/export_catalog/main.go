// Command export_catalog prints the seeded lending session as indented JSON.
package main

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"library-lending/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := export(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting catalog: %v\n", err)
		os.Exit(1)
	}
}

func export(w io.Writer) error {
	session, err := library.NewSession(library.WithoutArchive())
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Seed(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session.Snapshot())
}
