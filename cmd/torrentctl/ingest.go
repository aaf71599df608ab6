package main

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"torrent-vault/ingest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Validate .torrent files and store them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := ctx.decoderOptions(cmd)
			if err != nil {
				return err
			}
			svc, err := openStorages(cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			bloomFilter, err := ingest.LoadOrCreateBloomFilter(cfg.Ingest.BloomFilterPath, cfg.Ingest.BloomBits)
			if err != nil {
				return err
			}
			ingester := ingest.NewIngester(ingest.Options{
				Decoder:   opts,
				Workers:   cfg.Ingest.Workers,
				QueueSize: cfg.Ingest.QueueSize,
			}, bloomFilter)
			ingester.AddStorage(svc.primary)
			for _, s := range svc.extra {
				ingester.AddStorage(s)
			}
			if cfg.AMQP != "" {
				publisher, err := newPublisher(cfg.AMQP)
				if err != nil {
					return errors.Annotate(err, "connect amqp")
				}
				defer publisher.Close()
				ingester.SetPublisher(publisher)
			}

			failed := 0
			for _, r := range ingester.IngestFiles(cmd.Context(), args) {
				switch {
				case r.Err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Torrent.InfoHash, r.Path)
				case errors.Is(r.Err, ingest.ErrDuplicate):
					fmt.Fprintf(cmd.OutOrStdout(), "duplicate %s\n", r.Path)
				default:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
				}
			}

			logrus.Infof("Ingested %d files, %d failed, bloom filter holds %d info hashes",
				len(args), failed, bloomFilter.Count())
			if cfg.Ingest.BloomFilterPath != "" {
				if err := ingester.SaveBloomFilter(cfg.Ingest.BloomFilterPath); err != nil {
					logrus.Errorf("Failed to save bloom filter: %+v", err)
				}
			}
			if failed > 0 {
				return errors.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}
