package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/spf13/cobra"
)

// Relay is the part of the query relay the commands use.
type Relay interface {
	Ask(ctx context.Context, req entity.QueryRequest) (*entity.QueryResult, error)
	Corpora() []entity.Corpus
	Examples() []string
}

// RelayFactory builds the relay for an environment. cleanup releases what it holds.
type RelayFactory func(environment string) (relay Relay, cleanup func(), err error)

var (
	environment string
	noColor     bool

	newRelay     RelayFactory
	relay        Relay
	relayCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "fsc-qa-cli",
	Short: messages.AppTitle + " command-line client",
	Long: `Ask questions about Taiwan FSC enforcement cases, regulatory interpretations
and announcements from the terminal. Answers come from Gemini File Search with
the cited source documents listed below them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: connectRelay,
	PersistentPostRun: func(*cobra.Command, []string) {
		if relayCleanup != nil {
			relayCleanup()
			relayCleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "environment whose .env file is loaded (local, prod, or custom)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}

// connectRelay builds the relay once per process, unless one was injected.
func connectRelay(*cobra.Command, []string) error {
	if noColor {
		color.NoColor = true
	}
	if relay != nil {
		return nil
	}
	if newRelay == nil {
		return errors.New("relay not configured")
	}

	r, cleanup, err := newRelay(environment)
	if err != nil {
		return err
	}
	relay = r
	relayCleanup = cleanup
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(factory RelayFactory) int {
	newRelay = factory

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	text := err.Error()
	if entity.ErrorCode(err) != "internal" {
		text = messages.ErrorText(err)
	}
	_, _ = color.New(color.FgRed).Fprintln(w, "✗ "+text)
}
