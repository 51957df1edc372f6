package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arkstore/arkstore/internal/cachemgr"
)

func newEntryCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "entry <archive-id> <name>",
		Short: "Resolve a named entry inside the package stored at an archive id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid archive id %q: %w", args[0], err)
			}
			name := args[1]

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cache := cachemgr.New(store)
			data, ok := cache.Entry(uint32(id), name)
			if !ok {
				return fmt.Errorf("archive %d: entry %q not found", id, name)
			}

			if outPath == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the entry here instead of stdout")
	return cmd
}
