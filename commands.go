package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/phrasefit/phrasefit/internal/extract"
	"github.com/phrasefit/phrasefit/internal/match"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

func runModels(ctx context.Context, f cliFlags) error {
	client, _, err := newClient(f)
	if err != nil {
		return err
	}
	catalog, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	printModels("text models", catalog.Text)
	printModels("image models", catalog.Image)
	return nil
}

func printModels(header string, models []openrouter.Model) {
	ancli.Okf("%v (%v):\n", header, len(models))
	for _, m := range models {
		line := m.ID
		if m.Name != "" && m.Name != m.ID {
			line = fmt.Sprintf("%v  (%v)", m.ID, m.Name)
		}
		fmt.Println("  " + line)
	}
}

func runExtract(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("extract expects exactly one file argument")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read posting file: %w", err)
	}
	text, err := extract.FromString(string(data))
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}
	fmt.Println(text)
	return nil
}

func readResume(f cliFlags) (string, error) {
	if f.resumePath != "" {
		data, err := os.ReadFile(f.resumePath)
		if err != nil {
			return "", fmt.Errorf("failed to read résumé file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read résumé from stdin: %w", err)
	}
	return string(data), nil
}

// runDraft drafts phrases for an ad hoc keyword, using a throwaway store
// so the same service path runs as in the HTTP API.
func runDraft(ctx context.Context, f cliFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("draft expects a keyword argument")
	}
	keywordText := strings.Join(args, " ")
	resume, err := readResume(f)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resume) == "" {
		return fmt.Errorf("résumé text is empty, pass -resume or pipe it on stdin")
	}

	client, _, err := newClient(f)
	if err != nil {
		return err
	}

	store := match.NewMemStore()
	posting, err := store.CreatePosting(match.JobPosting{Title: "ad hoc"})
	if err != nil {
		return err
	}
	keyword, err := store.CreateKeyword(match.Keyword{
		PostingID: posting.ID,
		Text:      keywordText,
		Priority:  1,
	})
	if err != nil {
		return err
	}

	svc := match.NewService(store, client, nil)
	phrases, err := svc.DraftPhrases(ctx, keyword.ID, resume)
	if err != nil {
		return err
	}
	ancli.Okf("drafted %v phrases for '%v':\n", len(phrases), keywordText)
	for _, ph := range phrases {
		fmt.Println("  - " + ph.Text)
	}
	return nil
}
