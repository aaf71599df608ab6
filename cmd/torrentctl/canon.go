package main

import (
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"torrent-vault/bencode"
	"torrent-vault/metainfo"
)

func newCanonCommand(ctx *commandContext) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "canon IN OUT",
		Short: "Re-encode a .torrent file in canonical form",
		Long: "Re-encode a .torrent file in canonical form. By default the file is validated as " +
			"metainfo and only modeled fields are kept; --raw keeps every key and only sorts them.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readValue(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			var out []byte
			if raw {
				out = bencode.Encode(v)
			} else {
				m, err := metainfo.FromValue(v)
				if err != nil {
					return errors.Trace(err)
				}
				out, err = metainfo.Marshal(m)
				if err != nil {
					return errors.Trace(err)
				}
			}
			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return errors.Trace(err)
			}
			decoded, err := bencode.Decode(out)
			if err != nil {
				return errors.Trace(err)
			}
			infoHash, err := metainfo.InfoHash(decoded)
			if err != nil {
				return errors.Trace(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", infoHash, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Keep unmodeled keys, only sort dictionaries")
	return cmd
}
