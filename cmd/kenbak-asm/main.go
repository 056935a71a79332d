package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhinodevel/kenbak/asm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kenbak-asm",
		Short: "Kenbak-1 assembler front-end — constants pass only",
	}

	var outPath string

	constantsCmd := &cobra.Command{
		Use:   "constants [source-file]",
		Short: "Parse NAME = VALUE declarations from a source file and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cs, err := asm.ParseConstants(string(src))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			if err := asm.Dedup(cs); err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			fmt.Fprint(out, asm.FormatConstants(cs))
			return nil
		},
	}
	constantsCmd.Flags().StringVarP(&outPath, "output", "o", "", "write constants to this file instead of stdout")

	rootCmd.AddCommand(constantsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
