package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newPutCmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "put <archive-id>",
		Short: "Write a file into the block store under an archive id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid archive id %q: %w", args[0], err)
			}

			var data []byte
			if inPath == "" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(inPath)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if !store.Put(data, uint32(id)) {
				log.Error().Uint64("archive_id", id).Msg("put failed")
				return fmt.Errorf("archive %d: put failed", id)
			}
			log.Info().Uint64("archive_id", id).Int("bytes", len(data)).Msg("stored")
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "input file (defaults to stdin)")
	return cmd
}
