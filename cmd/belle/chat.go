package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"belle/internal/chat"
	"belle/internal/console"
	"belle/internal/dispatch"
	"belle/internal/history"
	"belle/internal/huggingface"
	"belle/internal/imagegen"
	"belle/internal/intent"
	"belle/internal/llm"
	"belle/internal/scheduler"
	"belle/internal/search"
	"belle/internal/serpapi"
	"belle/internal/storage"
	"belle/internal/trend"
	"belle/internal/vision"
)

// loopAsker lets the image-analysis selector read from the console loop,
// which is built after the providers.
type loopAsker struct {
	loop *console.Loop
}

func (a *loopAsker) Ask(ctx context.Context, question string) (string, error) {
	if a.loop == nil {
		return "", fmt.Errorf("console not ready")
	}
	return a.loop.Ask(ctx, question)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(cfg.ChatLogPath(), logger.Named("history"))
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}

	// Chat is the fallback for every turn, so its backend is mandatory.
	client, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider))
	if err != nil {
		return fmt.Errorf("chat provider: %w", err)
	}

	asker := &loopAsker{}
	providers := buildProviders(ctx, client, store, asker)

	var rec storage.Recorder
	if cfg.InteractionLogPath != "" {
		fr, err := storage.NewFileRecorder(cfg.InteractionLogPath)
		if err != nil {
			logger.Warn("interaction log disabled", zap.Error(err))
		} else {
			rec = fr
		}
	}

	if cfg.BackupSchedule != "" {
		sched := scheduler.New(logger.Named("scheduler"))
		err := sched.Add("transcript-backup", cfg.BackupSchedule, func(context.Context) error {
			path, err := store.Backup(cfg.BackupDir, time.Now())
			if err != nil {
				return err
			}
			logger.Info("transcript backed up", zap.String("path", path))
			return nil
		})
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	loop := console.New(
		intent.NewLLMClassifier(client, logger.Named("classifier")),
		dispatch.New(providers, logger.Named("dispatch")),
		console.Options{
			AssistantName: cfg.AssistantName,
			Username:      cfg.Username,
			In:            os.Stdin,
			Out:           os.Stdout,
			Recorder:      rec,
		},
		logger.Named("console"),
	)
	asker.loop = loop

	logger.Info("session started",
		zap.String("llm_provider", string(cfg.LLMProvider)),
		zap.Int("transcript_turns", store.Len()),
	)
	return loop.Run(ctx)
}

// buildProviders wires every capability whose credentials are present.
// Missing credentials leave the capability nil, which the dispatcher reports
// as not configured.
func buildProviders(ctx context.Context, client llm.Client, store *history.Store, asker vision.Asker) dispatch.Providers {
	p := dispatch.Providers{
		Chat: chat.New(client, store, chat.SystemPrompt(cfg.Username, cfg.AssistantName), logger.Named("chat")),
	}

	serp, err := serpapi.New(cfg.SerpAPIKey)
	if err != nil {
		logger.Warn("web search disabled", zap.Error(err))
	}
	hf, err := huggingface.New(cfg.HuggingFaceAPIKey, nil)
	if err != nil {
		logger.Warn("huggingface disabled", zap.Error(err))
	}

	var web search.WebSearcher
	if serp != nil {
		web = serp
	}
	p.Search = search.New(client, store, web, cfg.SearchResultsCount,
		search.SystemPrompt(cfg.Username, cfg.AssistantName), logger.Named("search"))

	opts := trend.Options{
		SummaryURL:    cfg.HFSummaryModelURL,
		SocialEnabled: cfg.ApifyAPIKey != "",
		AssistantName: cfg.AssistantName,
	}
	if serp != nil {
		opts.Trends = serp
	}
	if hf != nil {
		opts.Summarizer = hf
	}
	p.Trend = trend.New(client, opts, logger.Named("trend"))

	if hf != nil {
		p.ImageGeneration = newGenerator(hf)
	}

	analyzer, err := vision.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiVisionModel)
	if err != nil {
		logger.Warn("image analysis disabled", zap.Error(err))
	} else {
		p.ImageAnalysis = vision.New(vision.NewPromptSelector(asker), analyzer, logger.Named("vision"))
	}
	return p
}

func newGenerator(hf *huggingface.Client) *imagegen.Generator {
	var opener imagegen.Opener
	if cfg.OpenImages {
		opener = imagegen.SystemOpener{}
	}
	return imagegen.New(hf, cfg.HFImageModelURL, cfg.ImagesDir(), opener, logger.Named("imagegen"))
}
