package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/phrasefit/phrasefit/internal/openrouter"
)

func runPhoto(ctx context.Context, f cliFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("photo expects a prompt")
	}
	client, _, err := newClient(f)
	if err != nil {
		return err
	}
	res, err := client.GenerateImage(ctx, openrouter.ImageRequest{
		Prompt: strings.Join(args, " "),
		Size:   f.size,
	})
	if err != nil {
		return fmt.Errorf("failed to generate picture: %w", err)
	}
	outFile := filepath.Join(f.pictureDir, fmt.Sprintf("phrasefit_%v%v", randomSuffix(), extensionFor(res.MIME)))
	if err := os.WriteFile(outFile, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write picture: %w", err)
	}
	ancli.Okf("picture from '%v' rendered to: '%v'\n", res.Model, outFile)
	return nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func randomSuffix() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, 10)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}

	return string(result)
}
