package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"torrent-vault/bencode"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Print the value at a dotted path, e.g. info.files.0.length",
		Long: "Print the value at a dotted path. Strings and integers are printed as is, " +
			"lists and dicts as JSON with binary strings hex-encoded.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := readValue(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			found := bencode.GetByPath(v, args[1])
			if found == nil {
				return errors.NotFoundf("path %q in %s", args[1], args[0])
			}
			out, err := formatValue(found)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func formatValue(v bencode.Value) (string, error) {
	switch item := v.(type) {
	case bencode.Bytes:
		return printable(string(item)), nil
	case bencode.Int:
		return strconv.FormatInt(int64(item), 10), nil
	default:
		out, err := json.MarshalIndent(jsonable(bencode.Native(v)), "", "  ")
		if err != nil {
			return "", errors.Trace(err)
		}
		return string(out), nil
	}
}

// jsonable replaces byte strings in native values with printable text.
func jsonable(v any) any {
	switch item := v.(type) {
	case []byte:
		return printable(string(item))
	case []any:
		for i := range item {
			item[i] = jsonable(item[i])
		}
		return item
	case map[string]any:
		ret := make(map[string]any, len(item))
		for k, sub := range item {
			ret[printable(k)] = jsonable(sub)
		}
		return ret
	}
	return v
}
