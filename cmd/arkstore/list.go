package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arkstore/arkstore/pack"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <archive-id>",
		Short: "List entry hashes of the package stored at an archive id",
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
				return fmt.Errorf("archive %d: absent or corrupt", id)
			}

			pkg, err := pack.Parse(blob)
			if err != nil {
				return fmt.Errorf("archive %d: not a package: %w", id, err)
			}

			fmt.Printf("archive %d: %d entries, whollyCompressed=%v\n", id, pkg.Count(), pkg.IsWhollyCompressed())
			for i := 0; i < pkg.Count(); i++ {
				fmt.Printf("  hash=%d\n", pkg.HashAt(i))
			}
			return nil
		},
	}
	return cmd
}
