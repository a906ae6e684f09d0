// Command studio runs the seller workflow end to end: it takes product
// photos (and an optional OBJ mesh), generates a draft through the AI
// collaborator, publishes it to the in-memory catalog, and opens the
// interactive 3D preview of the published product.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"product-studio/internal/analysis"
	"product-studio/internal/catalog"
	"product-studio/internal/config"
	"product-studio/internal/graphics"
	"product-studio/internal/material"
	"product-studio/internal/overlay"
	"product-studio/internal/session"
	"product-studio/internal/viewer"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	objPath := flag.String("obj", "", "optional custom mesh (.obj); forces the custom shape")
	seller := flag.String("seller", "local-seller", "seller id attached to published products")
	headless := flag.Bool("headless", false, "generate and publish without opening the viewer window")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: studio [flags] image.jpg [more-images...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	prefs := config.Load()

	analyzer := buildAnalyzer(prefs)
	machine := session.New(analyzer, log, *seller)

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read image")
		}
		if err := machine.AddImage(data); err != nil {
			log.Fatal().Err(err).Msg("failed to add image")
		}
	}
	if *objPath != "" {
		src, err := os.ReadFile(*objPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *objPath).Msg("failed to read mesh")
		}
		if err := machine.AttachMesh(string(src)); err != nil {
			log.Fatal().Err(err).Msg("failed to attach mesh")
		}
	}

	ctx := context.Background()
	draft, err := machine.Generate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}
	if advisory := machine.Advisory(); advisory != "" {
		log.Warn().Msg(advisory)
	}
	log.Info().
		Str("title", draft.Title).
		Str("category", draft.Category).
		Float64("price", draft.Price).
		Stringer("shape", draft.ModelData.Shape).
		Msg("draft produced")

	product, err := machine.Publish()
	if err != nil {
		log.Fatal().Err(err).Msg("publish failed")
	}
	store := &catalog.Catalog{}
	store.Add(product)
	log.Info().Str("id", product.ID.String()).Int("catalog_size", store.Len()).Msg("published to catalog")

	if *headless {
		return
	}

	composer := viewer.NewComposer(material.NewLoader(), log, prefs.AutoRotate, prefs.GridVisible)
	// GPU work (mesh and texture upload) is deferred inside the composer
	// until the loop runs, so composing before the window exists is safe.
	composer.Compose(ctx, product.ModelData)

	ov := overlay.New()
	ov.ShowFPS = prefs.ShowFPS
	ov.Advisory = machine.Advisory()

	update := func(dt float32) {
		composer.Update(dt)
		ov.Loading = composer.Loading()
	}
	draw := func() {
		composer.Draw()
		ov.Draw()
	}

	graphics.Run(prefs.WindowWidth, prefs.WindowHeight, "Product Studio - "+product.Title, update, draw, composer.Unload)
}

// buildAnalyzer assembles the analysis chain from the environment: Gemini
// primary, with an OpenAI-compatible secondary when a key for it is present.
// Missing keys are fine; the session recovers with a fallback draft.
func buildAnalyzer(prefs config.Prefs) analysis.Analyzer {
	gemini := analysis.NewGemini(os.Getenv("GEMINI_API_KEY"), prefs.AIModel)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return &analysis.Fallback{Primary: gemini, Secondary: analysis.NewOpenAI(key, "")}
	}
	return gemini
}
