package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

var (
	replyPost    string
	replyRefs    []string
	replyThread  string
	replyJSON    bool
	replyVerbose bool
)

var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "Synthesize one reply to a post",
	Long: `Synthesize one reply to a post, styled after the given reference
comments. The post is read from stdin when --post is omitted.

If DATABASE_URL is set the exemplar index is consulted when fewer than two
references are given. Without ANTHROPIC_API_KEY the reply comes from the
template library.

Examples:
  mimic reply --post "Just shipped our pricing page" --ref "Love this!" --ref "So good."
  echo "Hiring is hard" | mimic reply --json`,
	RunE: runReply,
}

func init() {
	replyCmd.Flags().StringVarP(&replyPost, "post", "p", "", "Post to reply to (default: stdin)")
	replyCmd.Flags().StringArrayVarP(&replyRefs, "ref", "r", nil, "Reference comment in the target voice (repeatable)")
	replyCmd.Flags().StringVarP(&replyThread, "thread", "t", "cli", "Thread ID scoping template repetition")
	replyCmd.Flags().BoolVar(&replyJSON, "json", false, "Print the full outcome as JSON")
	replyCmd.Flags().BoolVarP(&replyVerbose, "verbose", "v", false, "Log pipeline progress to stderr")
}

func runReply(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	level := slog.LevelWarn
	if replyVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	post := replyPost
	if post == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read post: %w", err)
		}
		post = string(data)
	}
	if strings.TrimSpace(post) == "" {
		return fmt.Errorf("post is empty")
	}

	ctx := context.Background()

	// Without a user nothing is recorded; the store only serves search.
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		if db, err = openStore(ctx, cfg); err != nil {
			return err
		}
		defer db.Close()
	}
	eng, err := buildEngine(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	out := eng.synth.Synthesize(ctx, synth.Request{
		Post:       post,
		ThreadID:   replyThread,
		References: replyRefs,
	})

	w := cmd.OutOrStdout()
	if replyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printOutcome(w, out)
	return nil
}

func printOutcome(w io.Writer, out synth.Outcome) {
	fmt.Fprintln(w, out.Text)

	tag := color.New(color.FgGreen)
	if out.Advisory {
		tag = color.New(color.FgYellow)
	}
	fmt.Fprintf(w, "%s score=%.2f attempts=%d\n", tag.Sprintf("[%s]", out.Source), out.Score, out.Attempts)
	if out.Warning != "" {
		color.New(color.FgRed).Fprintln(w, out.Warning)
	}
}
