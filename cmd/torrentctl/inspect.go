package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"torrent-vault/bencode"
	"torrent-vault/metainfo"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the metainfo fields of a .torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readValue(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			m, err := metainfo.FromValue(v)
			if err != nil {
				return errors.Trace(err)
			}
			infoHash, err := metainfo.InfoHash(v)
			if err != nil {
				return errors.Trace(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, metainfoRows(m, infoHash), nil))
			if multi, ok := m.Layout.(metainfo.MultiFile); ok {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Path", "Length", "MD5"},
					fileRows(multi),
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
			}
			return nil
		},
	}
}

func readValue(cmd *cobra.Command, ctx *commandContext, path string) (bencode.Value, error) {
	opts, err := ctx.decoderOptions(cmd)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	v, err := bencode.NewDecoder(opts).Decode(raw)
	if err != nil {
		return nil, errors.Annotatef(err, "decode %s", path)
	}
	return v, nil
}

func metainfoRows(m *metainfo.TorrentMetainfo, infoHash metainfo.Hash) [][]string {
	rows := [][]string{
		{"Info hash", infoHash.String()},
		{"Name", printable(m.Name)},
		{"Announce", printable(m.Announce)},
	}
	for i, tier := range m.AnnounceList {
		rows = append(rows, []string{fmt.Sprintf("Tier %d", i), strings.Join(tier, " ")})
	}
	if m.CreationDate != nil {
		rows = append(rows, []string{"Created", time.Unix(*m.CreationDate, 0).UTC().Format(time.RFC3339)})
	}
	rows = appendOptional(rows, "Created by", m.CreatedBy)
	rows = appendOptional(rows, "Comment", m.Comment)
	rows = appendOptional(rows, "Encoding", m.Encoding)
	if m.PieceLength != nil {
		rows = append(rows, []string{"Piece length", strconv.FormatInt(*m.PieceLength, 10)})
	}
	rows = append(rows,
		[]string{"Pieces", strconv.Itoa(len(m.PieceHashes))},
		[]string{"Private", strconv.FormatBool(m.Private)},
		[]string{"Total length", strconv.FormatInt(m.TotalLength(), 10)},
	)
	if single, ok := m.Layout.(metainfo.SingleFile); ok {
		rows = append(rows, []string{"Layout", "single file"})
		rows = appendOptional(rows, "MD5", single.MD5Sum)
	} else {
		rows = append(rows, []string{"Layout", "multi file"})
	}
	return rows
}

func appendOptional(rows [][]string, label string, value *string) [][]string {
	if value == nil {
		return rows
	}
	return append(rows, []string{label, printable(*value)})
}

func fileRows(multi metainfo.MultiFile) [][]string {
	rows := make([][]string, 0, len(multi.Files))
	for _, f := range multi.Files {
		md5 := ""
		if f.MD5Sum != nil {
			md5 = *f.MD5Sum
		}
		rows = append(rows, []string{printable(strings.Join(f.Path, "/")), strconv.FormatInt(f.Length, 10), md5})
	}
	return rows
}

// printable hex-encodes byte strings that are not valid UTF-8.
func printable(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return "0x" + hex.EncodeToString([]byte(s))
}
