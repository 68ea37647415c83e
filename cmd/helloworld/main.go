package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chosenoffset.com/mspj/internal/config"
	"chosenoffset.com/mspj/internal/engine"
	"chosenoffset.com/mspj/internal/render/headless"
)

const (
	atlasPath = "./images/character-sprite/path/path-sheet.bmp"
	levelPath = "./tilemap-levels/level1"
	sheetPath = "./images/character-sprite/walk-cycle/character-walk-spritesheet.bmp"
)

func main() {
	configPath := flag.String("config", "mspj.yaml", "path to the engine config file")
	runHeadless := flag.Bool("headless", false, "run without a window")
	ticks := flag.Int("ticks", 600, "ticks to run in headless mode (0 runs until quit)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []engine.Option
	if *runHeadless {
		backend, _, _, _ := headless.NewBackend(*ticks)
		opts = append(opts, engine.WithBackend(backend))
	}

	e, err := engine.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(e); err != nil {
		e.Logger().Error("helloworld failed", zap.Error(err))
		if err := e.Shutdown(); err != nil {
			e.Logger().Error("shutdown failed", zap.Error(err))
		}
		os.Exit(1)
	}
	if err := e.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(e *engine.Engine) error {
	if err := e.InitializeGraphicsSubSystem(); err != nil {
		return err
	}
	if err := e.InitializeInputSystem(); err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return err
	}

	if _, err := e.LoadTextureAtlas(atlasPath, 32, 32); err != nil {
		return err
	}

	level, err := e.InstantiateGameObject()
	if err != nil {
		return err
	}
	tilemap, err := e.InstantiateTileMapComponent(level)
	if err != nil {
		return err
	}
	if err := tilemap.SetDisplayTileSize(64, 64); err != nil {
		return err
	}
	if err := tilemap.GenerateMapFromFile(levelPath); err != nil {
		return err
	}

	player, err := e.InstantiateGameObject()
	if err != nil {
		return err
	}
	if _, err := e.InstantiateControllerComponent(player); err != nil {
		return err
	}
	sprite, err := e.InstantiateSpriteRendererComponent(player)
	if err != nil {
		return err
	}
	if err := player.Transform().SetPosition(128, 64); err != nil {
		return err
	}

	sheet, err := engine.LoadSpritesheet(sheetPath)
	if err != nil {
		return err
	}
	if err := sheet.SetSpriteSize(32, 32); err != nil {
		return err
	}
	if err := sprite.SetDisplaySize(32, 32); err != nil {
		return err
	}
	if err := sprite.SetSpritesheet(sheet); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return e.MainGameLoop(ctx)
}
