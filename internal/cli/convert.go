package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/figwire/pkg/codec"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
	"github.com/matzehuels/figwire/pkg/figio"
)

// newConvertCmd creates the convert command: read figure JSON, re-encode it
// with the selected engine, write the result.
func newConvertCmd(cfg *Config) *cobra.Command {
	var (
		output     string
		engine     string
		pretty     bool
		keepUIDs   bool
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Re-encode figure JSON with a selected engine",
		Long: `Convert reads figure JSON from a file (or stdin with "-"), validates its
shape, strips trace UIDs, and re-encodes it with the selected engine.

Examples:
  figwire convert fig.json -o out.json
  figwire convert fig.json --engine orjson --pretty
  cat fig.json | figwire convert - > out.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			if engine == "" {
				engine = cfg.Engine
			}
			if !cmd.Flags().Changed("pretty") {
				pretty = cfg.Pretty
			}

			data, err := readInput(input)
			if err != nil {
				return err
			}
			logger.Debug("read input", "source", input, "bytes", len(data))

			opts := []figio.Option{figio.WithEngine(engine)}
			if pretty {
				opts = append(opts, figio.WithPretty())
			}
			if keepUIDs {
				opts = append(opts, figio.KeepUIDs())
			}

			var out string
			if noValidate {
				v, derr := codec.Decode(data, engine)
				if derr != nil {
					return derr
				}
				out, err = figio.ToJSON(v, append(opts, figio.WithoutValidation())...)
			} else {
				fig, ferr := figio.FromJSON(data, figio.WithEngine(engine))
				if ferr != nil {
					return ferr
				}
				out, err = figio.ToJSON(fig, opts...)
			}
			if err != nil {
				return err
			}

			if err := writeOutput(output, out); err != nil {
				return err
			}
			if output != "-" {
				printFile(output)
			}
			prog.done(fmt.Sprintf("Converted %d bytes", len(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path (- for stdout)")
	cmd.Flags().StringVar(&engine, "engine", "", "codec engine (legacy, json, orjson, auto)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent output with 2 spaces")
	cmd.Flags().BoolVar(&keepUIDs, "keep-uids", false, "preserve trace uid fields")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip figure shape validation")

	return cmd
}

// readInput reads a file path or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}

// writeOutput writes to a file path or stdout when path is "-".
func writeOutput(path, data string) error {
	if path == "-" {
		fmt.Println(data)
		return nil
	}
	if err := os.WriteFile(path, []byte(data+"\n"), 0o644); err != nil {
		return fwerrors.Wrap(fwerrors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
