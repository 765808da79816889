package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/dgnsrekt/frasi/internal/store"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	statsReset bool

	statsCmd = &cobra.Command{
		Use:     "stats",
		Short:   "Show revision counters",
		Long:    paragraph(fmt.Sprintf("\n%s the total number of revisions and the count of every page.", keyword("Show"))),
		Example: paragraph("frasi stats\nfrasi stats --reset"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drv, path, err := storeLocation()
			if err != nil {
				return err
			}
			st, err := store.Open(drv, path)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			counter := revision.New(st, revision.DefaultPage)
			if statsReset {
				if err := counter.Reset(); err != nil {
					return fmt.Errorf("unable to reset revisions: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Revisions cleared.")
				return nil
			}
			return printStats(cmd.OutOrStdout(), counter, path)
		},
	}
)

func printStats(w io.Writer, counter *revision.Counter, path string) error {
	total, err := counter.Total()
	if err != nil {
		return err
	}
	pages, err := counter.Pages()
	if err != nil {
		return err
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Count > pages[j].Count
	})

	fmt.Fprintln(w, keyword(revision.Label(total)))
	if len(pages) == 0 {
		fmt.Fprintln(w, subtle("no revisions yet"))
	}

	pad := 0
	for _, p := range pages {
		pad = max(pad, runewidth.StringWidth(p.Page))
	}
	for _, p := range pages {
		share := 0.0
		if total > 0 {
			share = float64(p.Count) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %s%s  %8s  %s\n",
			p.Page,
			strings.Repeat(" ", pad-runewidth.StringWidth(p.Page)),
			humanize.Comma(int64(p.Count)),
			subtle(humanize.FtoaWithDigits(share, 1)+"%"),
		)
	}

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			fmt.Fprintln(w, subtle(fmt.Sprintf("\n%s, %s, updated %s", path, humanize.Bytes(uint64(fi.Size())), humanize.Time(fi.ModTime())))) //nolint:gosec
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "clear every revision counter")
}
