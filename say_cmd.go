package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/spf13/cobra"
)

var sayCmd = &cobra.Command{
	Use:     "say TEXT...",
	Short:   "Speak phrases",
	Long:    paragraph(fmt.Sprintf("\n%s each argument in turn. Every phrase spoken counts as one revision.", keyword("Speak"))),
	Example: paragraph("frasi say \"Buongiorno\" \"Come stai?\" --tts piper"),
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		p := page
		if p == "" {
			p = deck.DefaultPage
		}
		sess, err := openSession(ctx, p)
		if err != nil {
			return err
		}
		defer sess.Close()

		sp := sess.speaker
		sp.Start(ctx, args)
		// Running the command is the gesture.
		if err := sp.Gesture(ctx); err != nil {
			log.Warn("audio unlock failed", "err", err)
		}

		w := cmd.OutOrStdout()
		for _, text := range args {
			if strings.TrimSpace(text) == "" {
				continue
			}
			fmt.Fprintln(w, "🔊 "+keyword(text))
			if err := sp.Speak(ctx, text); err != nil {
				return fmt.Errorf("unable to speak %q: %w", text, err)
			}
		}

		total, err := sess.counter.Total()
		if err != nil {
			return err
		}
		if sess.engineName == "" {
			fmt.Fprintln(w, subtle("aucun moteur vocal, utilisez --tts piper ou --tts gtts"))
		}
		fmt.Fprintln(w, subtle(revision.Label(total)))
		return nil
	},
}
