package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	fitapp "github.com/juan-esteban-berger/fit-app"
)

func main() {
	var (
		tz      = flag.String("tz", "UTC", "IANA timezone for the title and timestamps")
		jsonOut = flag.Bool("json", false, "Emit the full derivation as JSON")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <activity.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	loc, err := fitapp.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		os.Exit(1)
	}
	doc, err := fitapp.ParseDocument(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	act, err := fitapp.Normalize(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	deriv, err := fitapp.Derive(act, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	session := fitapp.Localize(act, loc)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"session": session, "derivation": deriv}); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(session.Title)
	for _, entry := range deriv.Card {
		fmt.Printf("- %-16s %s\n", entry.Label, entry.Text)
	}
	if deriv.NeedsPath {
		path := fitapp.ExtractPath(act.Records)
		fmt.Printf("- %-16s %d points\n", "Path", len(path.Points))
	}
}
