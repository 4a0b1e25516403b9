package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

var (
	speakLocale string
	speakRaw    bool

	speakCmd = &cobra.Command{
		Use:   "speak TEXT...",
		Short: "Speak a word or sentence without opening the reader",
		Long:  paragraph(fmt.Sprintf("\n%s a single utterance with the configured engine. Text is normalized the way the reader normalizes words unless --raw is set.", keyword("Speak"))),
		Example: paragraph(`vokabel speak "Hund (dog), canine"
vokabel speak --locale en "the dog"
vokabel speak --raw --engine piper "Der Hund schläft."`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			locale, err := parseLocale(speakLocale)
			if err != nil {
				return err
			}

			text := speakText(args, speakRaw)
			if text == "" {
				return errors.New("nothing to speak")
			}

			stack, err := newSpeechStack(speechConfig(), true)
			if err != nil {
				return err
			}
			defer func() { _ = stack.Close() }()

			if err := stack.check(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Debug("speaking", "text", text, "locale", locale, "engine", speechEngine)
			if err := stack.speaker.Speak(ctx, text, locale); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("unable to speak: %w", err)
			}
			return nil
		},
	}
)

// speakText joins the arguments and normalizes them unless raw is set.
func speakText(args []string, raw bool) string {
	text := strings.TrimSpace(strings.Join(args, " "))
	if raw {
		return text
	}
	return vocab.Normalize(text)
}

func init() {
	speakCmd.Flags().StringVarP(&speakLocale, "locale", "l", string(ttypes.LocaleGerman), "voice locale: de-DE or en-US")
	speakCmd.Flags().BoolVar(&speakRaw, "raw", false, "speak the text as given, without normalizing")
}
