package main

import (
	"fmt"
	"log"

	"billscan/internal/config"
	"billscan/internal/handler"
	"billscan/internal/parser"
	"billscan/internal/parser/claude"
	"billscan/internal/parser/gemini"
	"billscan/internal/parser/openai"
	"billscan/internal/port"
	"billscan/internal/raster"
	"billscan/internal/router"
	"billscan/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registerProviders()

	// Initialize model client (with multi-provider fallback if configured)
	model, err := buildModelClient(&cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}

	// Initialize services
	rasterizer := raster.NewPDFRasterizer(cfg.Raster.DPI)
	sourceSvc := service.NewSourceService(&cfg.Fetch)
	extractSvc := service.NewExtractService(model, rasterizer)

	// Initialize handlers
	extractH := handler.NewExtractHandler(sourceSvc, extractSvc)
	healthH := handler.NewHealthHandler(&cfg.Model)

	// Setup router
	r := router.Setup(extractH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func registerProviders() {
	parser.RegisterProvider("gemini", func(cfg *config.ModelProviderConfig) (port.PageModelClient, error) {
		return gemini.NewClient(cfg), nil
	})
	parser.RegisterProvider("claude", func(cfg *config.ModelProviderConfig) (port.PageModelClient, error) {
		return claude.NewClient(cfg), nil
	})
	parser.RegisterProvider("openai", func(cfg *config.ModelProviderConfig) (port.PageModelClient, error) {
		return openai.NewClient(cfg), nil
	})
}

// buildModelClient assembles the page model client from the configured tiers.
// A single tier yields the provider client directly; multiple tiers are
// wrapped in a FallbackClient that tries them in order.
func buildModelClient(cfg *config.ModelConfig) (port.PageModelClient, error) {
	primary := cfg.PrimaryConfig()
	client, err := parser.NewClient(primary)
	if err != nil {
		return nil, err
	}

	clients := []port.PageModelClient{client}
	names := []string{primary.Provider}

	for _, tier := range []*config.ModelProviderConfig{cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
		if tier == nil {
			continue
		}
		c, err := parser.NewClient(tier)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
		names = append(names, tier.Provider)
	}

	if len(clients) == 1 {
		return clients[0], nil
	}
	log.Printf("main: model fallback chain enabled: %v", names)
	return parser.NewFallbackClient(clients, names), nil
}
