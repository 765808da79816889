package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/highlight"
	"github.com/dgnsrekt/frasi/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	listQuery string
	listStyle string
	listWidth uint
	listNoFR  bool

	listCmd = &cobra.Command{
		Use:     "list [DECK]",
		Short:   "Print a deck as a table",
		Long:    paragraph(fmt.Sprintf("\n%s the phrases of a deck, optionally filtered. Matches are shown in bold.", keyword("Print"))),
		Example: paragraph("frasi list\nfrasi list saluti.yaml --search grazie"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeck(cmd.Context(), args)
			if err != nil {
				return err
			}

			style := viper.GetString("style")
			isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
			// We want to use a special no-TTY style, when stdout is not a terminal
			// and there was no specific style passed by arg
			if !isTerminal && !cmd.Flags().Changed("style") {
				style = styles.NoTTYStyle
			}
			if !utils.ValidStyle(style) {
				return fmt.Errorf("specified style does not exist: %s", style)
			}

			width := listWidth
			if !cmd.Flags().Changed("width") && isTerminal {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width = uint(min(w, 120)) //nolint:gosec
				}
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithColorProfile(lipgloss.ColorProfile()),
				utils.GlamourStyle(style),
				glamour.WithWordWrap(int(width)), //nolint:gosec
			)
			if err != nil {
				return fmt.Errorf("unable to create renderer: %w", err)
			}

			out, err := r.Render(deckMarkdown(d, listQuery, !listNoFR))
			if err != nil {
				return fmt.Errorf("unable to render markdown: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
)

// deckMarkdown renders the phrases matching query as a markdown table, with
// the matches in bold.
func deckMarkdown(d *deck.Deck, query string, showFR bool) string {
	query = strings.TrimSpace(query)
	phrases := d.Filter(query)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Page)
	if len(phrases) == 0 {
		fmt.Fprintf(&b, "Aucune phrase ne correspond à *%s*.\n", escapeCell(query))
		return b.String()
	}

	if showFR {
		b.WriteString("| Italiano | Français |\n| --- | --- |\n")
	} else {
		b.WriteString("| Italiano |\n| --- |\n")
	}
	for _, p := range phrases {
		it := boldMatches(p.IT, query)
		if !showFR {
			fmt.Fprintf(&b, "| %s |\n", it)
			continue
		}
		fr := boldMatches(p.FR, query)
		fmt.Fprintf(&b, "| %s | %s |\n", it, fr)
	}
	fmt.Fprintf(&b, "\n%d / %d phrases\n", len(phrases), d.Len())
	return b.String()
}

// boldMatches escapes text for a table cell with the matches of query in bold.
func boldMatches(text, query string) string {
	var b strings.Builder
	for _, p := range highlight.Split(text, query) {
		if p.Match {
			b.WriteString("**" + escapeCell(p.Text) + "**")
		} else {
			b.WriteString(escapeCell(p.Text))
		}
	}
	return b.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "search", "q", "", "only show phrases containing this text")
	listCmd.Flags().StringVarP(&listStyle, "style", "s", styles.AutoStyle, "style name or JSON path")
	listCmd.Flags().UintVarP(&listWidth, "width", "w", 80, "word-wrap at width")
	listCmd.Flags().BoolVar(&listNoFR, "no-fr", false, "hide the French column")
	_ = viper.BindPFlag("style", listCmd.Flags().Lookup("style"))
	viper.SetDefault("style", styles.AutoStyle)
}
