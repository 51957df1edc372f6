// Command arkstore is a small inspection CLI over a blockstore.Store /
// pack.Package pair of local files. It exists purely as an operator-facing
// surface around the core library (spec.md §1 explicitly keeps such
// tooling out of the core's scope); none of its flags or output format are
// part of the spec's contract.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagMainFile  string
	flagIndexFile string
	flagIndexID   uint8
	flagVerbose   bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arkstore",
		Short: "Inspect and edit a block-chained archive cache",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
		},
	}

	cmd.PersistentFlags().StringVar(&flagMainFile, "main", "main.dat", "path to the main (block-chunked) file")
	cmd.PersistentFlags().StringVar(&flagIndexFile, "index", "main.idx", "path to the index file")
	cmd.PersistentFlags().Uint8Var(&flagIndexID, "index-id", 0, "owning index id tagged into every block header")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	viper.BindPFlag("main", cmd.PersistentFlags().Lookup("main"))
	viper.BindPFlag("index", cmd.PersistentFlags().Lookup("index"))
	viper.BindPFlag("index-id", cmd.PersistentFlags().Lookup("index-id"))
	viper.SetEnvPrefix("arkstore")
	viper.AutomaticEnv()

	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEntryCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("arkstore: command failed")
	}
}
