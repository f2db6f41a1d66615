package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/joho/godotenv"
)

const usage = `phrasefit - match your résumé phrasing against job posting keywords

Prerequisites:
  - Set the OPENROUTER_API_KEY environment variable to your OpenRouter API key,
    or put it in a .env file, or in the yaml config
  - (Optional) Set the NO_COLOR environment variable to disable ansi color output

Usage: phrasefit [flags] <command>

Flags:
  -conf string      Path to the yaml config file. (default '%v')
  -tm string        Override the text model for this invocation.
  -im string        Override the image model for this invocation.
  -pd string        Directory to store generated pictures. (default '%v')
  -size string      Picture size: square, landscape, portrait or WIDTHxHEIGHT. (default square)
  -resume string    Path to a résumé text file, used by the draft command. Reads stdin when unset.

Commands:
  h|help                        Display this help message
  s|serve                       Run the HTTP API
  m|models                      List the text and image capable models
  e|extract <file>              Strip a saved job posting (html or plain text) down to text
  d|draft <keyword>             Draft résumé phrases covering the keyword, grounded in -resume
  p|photo <prompt>              Render a profile photo from the given prompt

Examples:
  - phrasefit serve
  - phrasefit models
  - phrasefit extract posting.html
  - phrasefit -resume resume.txt draft "Kubernetes"
  - phrasefit -size portrait photo a professional headshot, neutral background
`

const defaultConfPath = "phrasefit.yaml"

type cliFlags struct {
	confPath   string
	textModel  string
	imageModel string
	pictureDir string
	size       string
	resumePath string
}

func parseFlags() (cliFlags, []string) {
	var f cliFlags
	flag.StringVar(&f.confPath, "conf", defaultConfPath, "path to the yaml config file")
	flag.StringVar(&f.textModel, "tm", "", "override the text model")
	flag.StringVar(&f.imageModel, "im", "", "override the image model")
	flag.StringVar(&f.pictureDir, "pd", ".", "directory to store generated pictures")
	flag.StringVar(&f.size, "size", "", "picture size")
	flag.StringVar(&f.resumePath, "resume", "", "path to a résumé text file")
	flag.Usage = printUsage
	flag.Parse()
	return f, flag.Args()
}

func printUsage() {
	fmt.Printf(usage, defaultConfPath, ".")
}

func run(ctx context.Context, f cliFlags, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("expected a command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "h", "help":
		printUsage()
		return nil
	case "s", "serve":
		return runServe(ctx, f)
	case "m", "models":
		return runModels(ctx, f)
	case "e", "extract":
		return runExtract(rest)
	case "d", "draft":
		return runDraft(ctx, f, rest)
	case "p", "photo":
		return runPhoto(ctx, f, rest)
	default:
		printUsage()
		return fmt.Errorf("unknown command: '%v'", cmd)
	}
}

func main() {
	ancli.SetupSlog()
	// A missing .env file is fine, the environment and config cover it
	if err := godotenv.Load(); err != nil && misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Okf("no .env file loaded: %v\n", err)
	}

	f, args := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	go func() { shutdown.Monitor(cancel) }()

	if err := run(ctx, f, args); err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
	cancel()
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("all done, bye bye!\n")
	}
}
