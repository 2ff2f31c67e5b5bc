package main

import (
	"context"
	"fmt"
	"io"
)

func runFonts(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("fonts", stderr)
	query := fs.String("q", "", "fuzzy search query")
	dir := fs.String("fonts", "", "directory of extra .ttf/.otf fonts")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := parse(fs, args); err != nil {
		return err
	}
	reg, err := loadFonts(*dir, setupLogging(stderr, *verbose))
	if err != nil {
		return err
	}
	for _, key := range reg.Search(*query) {
		fam, _ := reg.Resolve(key)
		fmt.Fprintf(stdout, "%s\t%v\n", key, fam.Weights())
	}
	return nil
}
