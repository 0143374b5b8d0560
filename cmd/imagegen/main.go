package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"CharacterChat/internal/ai"
	"CharacterChat/internal/config"

	"go.uber.org/zap"
)

// Отладочная утилита: один вызов генерации или правки изображения в файл,
// опционально с описанием результата vision‑моделью.
func main() {
	prompt := flag.String("prompt", "", "текстовый промпт")
	editURL := flag.String("edit-url", "", "URL референсного изображения; пусто — генерация с нуля")
	out := flag.String("out", "image.png", "путь для сохранения результата")
	describe := flag.Bool("describe", false, "описать результат vision‑моделью")
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: imagegen -prompt \"a red fox\" [-edit-url URL] [-out image.png] [-describe]")
		os.Exit(2)
	}

	gw, err := ai.NewGateway(cfg.AI, sugar)
	if err != nil {
		sugar.Fatalw("Не удалось создать шлюз провайдера", "error", err)
	}

	ctx := context.Background()
	opts := ai.ImageOptions{
		Model:    cfg.AI.ImageModel,
		Width:    cfg.AI.ImageWidth,
		Height:   cfg.AI.ImageHeight,
		Steps:    cfg.AI.ImageSteps,
		CFGScale: cfg.AI.ImageCFGScale,
		Format:   cfg.AI.ImageFormat,
		Variants: cfg.AI.ImageVariants,
		SafeMode: cfg.AI.ImageSafeMode,
	}

	var data []byte
	if *editURL != "" {
		data, err = gw.Image.Edit(ctx, *prompt, *editURL, opts)
	} else {
		data, err = gw.Image.Generate(ctx, *prompt, opts)
	}
	if err != nil {
		sugar.Fatalw("Запрос изображения не удался", "error", err)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		sugar.Fatalw("Не удалось сохранить файл", "path", *out, "error", err)
	}
	fmt.Printf("Сохранено: %s (%d bytes)\n", *out, len(data))

	if *describe {
		desc, err := gw.Vision.Describe(ctx, data)
		if err != nil {
			sugar.Warnw("Описание не удалось", "error", err)
		} else {
			fmt.Println(desc)
		}
	}
}
