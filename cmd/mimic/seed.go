package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mimic/internal/config"
)

var seedSource string

var seedCmd = &cobra.Command{
	Use:   "seed [FILE]",
	Short: "Load exemplar replies into the semantic index",
	Long: `Load exemplar replies, one per line, into the index consulted when a
user has fewer than two approved comments. Reads stdin when FILE is omitted.
Blank lines and duplicates are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedSource, "source", "seed", "Source label stored with each exemplar")
}

func runSeed(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}
	lines, err := readExemplars(in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openStore(ctx, config.Load())
	if err != nil {
		return err
	}
	defer db.Close()

	for _, line := range lines {
		if err := db.AddExemplar(ctx, line, seedSource); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("indexed %d exemplars", len(lines)))
	return nil
}

func readExemplars(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read exemplars: %w", err)
	}
	return lines, nil
}
