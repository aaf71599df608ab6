package main

import (
	"os"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"torrent-vault/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export INFOHASH",
		Short: "Write a stored torrent as a canonical .torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			svc, err := openStorages(cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			exporter := export.NewExporter(svc.primary, cfg.Export.CacheTTL, cfg.Export.CacheSize)
			data, err := exporter.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".torrent"
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return errors.Trace(err)
			}
			return errors.Trace(os.WriteFile(output, data, 0o644))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default INFOHASH.torrent)")
	return cmd
}
