// Command rastercodec is the command-line front end for the codec
// engines, driven through package dispatch. It is an external collaborator to the
// core: it owns pixel I/O (via golang.org/x/image/bmp) and process
// exit codes, neither of which the core specifies.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/basaltimg/rastercodec/dispatch"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("rastercodec failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rastercodec <compress|decompress> <codec> <input> <output> [quality]",
		Short:         "Compress and decompress raster images with the huffman, rle, lzw, and dct codecs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompressCmd(), newDecompressCmd())
	return root
}

func newCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <codec> <input.bmp> <output>",
		Short: "Compress a BMP image with the given codec",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			codecName, in, out := args[0], args[1], args[2]
			quality := 0
			if len(args) == 4 {
				q, err := strconv.Atoi(args[3])
				if err != nil {
					return fmt.Errorf("rastercodec: invalid quality %q: %w", args[3], err)
				}
				quality = q
			}

			img, err := loadBMP(in)
			if err != nil {
				return err
			}
			if err := dispatch.Compress(codecName, img, out, quality); err != nil {
				return err
			}
			log.Info().Str("codec", codecName).Str("input", in).Str("output", out).Msg("compressed")
			return nil
		},
	}
}

func newDecompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompress <codec> <input> <output.bmp>",
		Short: "Decompress a container back into a BMP image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			codecName, in, out := args[0], args[1], args[2]

			img, err := dispatch.Decompress(codecName, in)
			if err != nil {
				return err
			}
			if err := saveBMP(out, img); err != nil {
				return err
			}
			log.Info().Str("codec", codecName).Str("input", in).Str("output", out).Msg("decompressed")
			return nil
		},
	}
}
