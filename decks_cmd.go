package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	decksAll bool

	decksCmd = &cobra.Command{
		Use:     "decks [DIR]",
		Short:   "List the decks in a directory",
		Long:    paragraph(fmt.Sprintf("\n%s deck files (JSON, YAML or markdown tables, optionally zstd compressed) beneath a directory. Files ignored by git are skipped.", keyword("Find"))),
		Example: paragraph("frasi decks\nfrasi decks ~/italiano --all"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			files, err := deck.Discover(dir, decksAll)
			if err != nil {
				return err
			}
			printDecks(cmd.OutOrStdout(), files)
			return nil
		},
	}
)

func printDecks(w io.Writer, files []deck.File) {
	if len(files) == 0 {
		fmt.Fprintln(w, subtle("no decks found"))
		return
	}
	for _, f := range files {
		log.Debug("found deck", "path", f.Path, "page", f.Page())
		fmt.Fprintf(w, "%s  %s\n", keyword(f.Rel), subtle(fmt.Sprintf("%s · %s · %s",
			f.Page(), humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime)))) //nolint:gosec
	}
}

func init() {
	decksCmd.Flags().BoolVarP(&decksAll, "all", "a", false, "include hidden and ignored files")
}
