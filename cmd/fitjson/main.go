package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/juan-esteban-berger/fit-app/activitystore"
	"github.com/juan-esteban-berger/fit-app/fitdoc"
)

func main() {
	var (
		outPath    = flag.String("out", "", "Output path (default: <input>.json next to the FIT file)")
		overwrite  = flag.Bool("overwrite", true, "Replace an existing output file")
		sqlitePath = flag.String("sqlite", "", "Also store the document in this SQLite activity database")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	result, err := fitdoc.ExportFile(flag.Arg(0), fitdoc.ExportOptions{
		OutputPath: *outPath,
		Overwrite:  *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "conversion failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion complete\n")
	fmt.Printf("Document:  %s\n", result.OutputPath)
	fmt.Printf("ID:        %s\n", result.DocumentID)
	fmt.Printf("Sessions:  %d\n", result.SessionCount)
	fmt.Printf("Records:   %d\n", result.RecordCount)

	if *sqlitePath != "" {
		if err := store(*sqlitePath, result.OutputPath); err != nil {
			fmt.Fprintf(os.Stderr, "store failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Stored in: %s\n", *sqlitePath)
	}
}

func store(dbPath, docPath string) error {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return err
	}
	doc, err := fitapp.ParseDocument(data)
	if err != nil {
		return err
	}
	db, err := activitystore.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Put(context.Background(), doc)
	return err
}
