package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arkstore/arkstore/blockstore"
)

func newGetCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "get <archive-id>",
		Short: "Read an archive blob from the block store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid archive id %q: %w", args[0], err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			blob, ok := store.Get(uint32(id))
			if !ok {
				log.Error().Uint64("archive_id", id).Msg("archive absent or corrupt")
				return fmt.Errorf("archive %d: absent or corrupt", id)
			}

			if outPath == "" {
				_, err = os.Stdout.Write(blob)
				return err
			}
			return os.WriteFile(outPath, blob, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the blob here instead of stdout")
	return cmd
}

// openStore resolves the main/index file paths through viper, so an
// ARKSTORE_MAIN/ARKSTORE_INDEX environment variable overrides the bound
// --main/--index flags without the caller having to know that.
func openStore() (*blockstore.Store, error) {
	return blockstore.Open(flagIndexID, viper.GetString("main"), viper.GetString("index"))
}
