package main

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/providers/codec"
)

var (
	compressScheme string
	compressOutput string
)

var compressCmd = &cobra.Command{
	Use:   "compress <file>",
	Short: "Compress an asset for a compressed manifest entry",
	Long: `Compress writes <file> encoded with the chosen scheme next to the input,
using the scheme's conventional suffix (.br, .gz, .zst).

Examples:
  pageloader compress three.min.js              # three.min.js.br
  pageloader compress --scheme zstd theme.css   # theme.css.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().StringVar(&compressScheme, "scheme", "brotli", "Compression scheme: brotli, gunzip, zstd")
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "Output file (default: input plus scheme suffix)")
}

func runCompress(cmd *cobra.Command, args []string) error {
	scheme, err := resource.ParseScheme(compressScheme)
	if err != nil {
		return err
	}
	if !scheme.Compressed() {
		return fmt.Errorf("scheme %q does not compress", compressScheme)
	}

	input := args[0]
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if mtype := alreadyCompressed(data); mtype != "" {
		return fmt.Errorf("%s is already compressed (%s)", input, mtype)
	}

	encoded, err := codec.Encode(scheme, data)
	if err != nil {
		return fmt.Errorf("%s encode: %w", scheme, err)
	}

	output := compressOutput
	if output == "" {
		output = input + scheme.Extension()
	}
	if err := os.WriteFile(output, encoded, 0o644); err != nil {
		return err
	}

	logger.Info("asset compressed",
		zap.String("input", input),
		zap.String("output", output),
		zap.Stringer("scheme", scheme),
		zap.Int("in_bytes", len(data)),
		zap.Int("out_bytes", len(encoded)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// alreadyCompressed returns the MIME type of data when it is a compressed
// container. Brotli streams have no signature and are never detected.
func alreadyCompressed(data []byte) string {
	mtype := mimetype.Detect(data)
	for _, compressed := range []string{"application/gzip", "application/zstd", "application/x-xz", "application/x-bzip2"} {
		if mtype.Is(compressed) {
			return mtype.String()
		}
	}
	return ""
}
