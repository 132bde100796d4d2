// Command digest summarizes or analyzes a single file from the command
// line. Progress goes to stderr, the result to stdout, so output can be
// piped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/brunobiangulo/godigest"
)

func main() {
	filePath := flag.String("file", "", "Path to the document or audio file")
	configPath := flag.String("config", "", "Path to config file (YAML or JSON)")
	analyze := flag.Bool("analyze", false, "Produce a structured discussion report instead of a summary")
	lang := flag.String("lang", "", "Language hint for audio transcription")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	_ = godotenv.Load()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: digest -file <path> [-config <path>] [-analyze] [-lang <code>]")
		os.Exit(2)
	}

	cfg := godigest.DefaultConfig()
	if *configPath != "" {
		loaded, err := godigest.LoadConfig(*configPath)
		if err != nil {
			fatal("loading config: %v", err)
		}
		cfg = loaded
	}
	applyEnv(&cfg)

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fatal("reading file: %v", err)
	}

	doc := godigest.SourceDocument{
		Data:     data,
		MIMEType: mime.TypeByExtension(filepath.Ext(*filePath)),
		Filename: filepath.Base(*filePath),
	}

	engine, err := godigest.New(cfg)
	if err != nil {
		fatal("creating engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []godigest.Option{godigest.WithProgress(printProgress)}
	if *lang != "" {
		opts = append(opts, godigest.WithLanguageHint(*lang))
	}

	if *analyze {
		report, err := engine.Analyze(ctx, doc, opts...)
		if err != nil {
			fatal("analyze: %v", err)
		}
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return
	}

	summary, err := engine.Summarize(ctx, doc, opts...)
	if err != nil {
		fatal("summarize: %v", err)
	}
	fmt.Println(summary.Text)
}

func printProgress(ev godigest.ProgressEvent) {
	switch ev.Kind {
	case godigest.KindChunkProgress:
		fmt.Fprintf(os.Stderr, "chunks: %d/%d\n", ev.Current, ev.Total)
	case godigest.KindResult, godigest.KindFailure:
		// Terminal outcomes go to stdout or the exit path.
	default:
		fmt.Fprintf(os.Stderr, "%s...\n", ev.Kind)
	}
}

func applyEnv(cfg *godigest.Config) {
	for _, lc := range []*godigest.LLMConfig{&cfg.Generation, &cfg.Vision, &cfg.Transcription} {
		if lc.APIKey != "" {
			continue
		}
		switch lc.Provider {
		case "openai":
			lc.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			lc.APIKey = os.Getenv("GROQ_API_KEY")
		case "gemini":
			lc.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
