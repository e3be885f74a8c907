package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"adstudio/internal/http/handlers"
	"adstudio/internal/http/httpapi"
	"adstudio/internal/infra"
	"adstudio/internal/promptcfg"
	"adstudio/internal/providers/image"
	"adstudio/internal/providers/prompt"
	"adstudio/internal/studio"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set; generation requests will fail fast and fall back to placeholders")
	}

	enhancer := prompt.NewOpenAIEnhancer(prompt.OpenAIOptions{
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIChatModel,
		BaseURL:  cfg.OpenAIBaseURL,
		Fallback: prompt.NewPassthroughEnhancer(),
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt enhancement fell back to original description")
		},
	})

	resolver, err := promptcfg.NewResolver(promptcfg.Options{
		URL:    cfg.PromptConfigURL,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prompt config resolver")
	}

	generator := image.NewClient(image.Options{
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		Model:        cfg.OpenAIImageModel,
		Logger:       &logger,
		RequestDelay: cfg.ImageDelay,
	})

	st := studio.NewStudio(studio.Options{
		Enhancer:    enhancer,
		Resolver:    resolver,
		Generator:   generator,
		Placeholder: image.NewPlaceholder(),
		Logger:      &logger,
		ImageSize:   cfg.ImageSize,
		Quality:     cfg.ImageQuality,
		RevealDelay: cfg.RevealDelay,
	})

	app := handlers.NewApp(cfg, logger, st, studio.NewStore(cfg.SessionTTL))
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
