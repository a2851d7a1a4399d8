package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/config"
	"github.com/nutrascan/internal/handler"
	"github.com/nutrascan/internal/router"
	"github.com/nutrascan/internal/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the NutraScan HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := loadConfig()

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		log.Printf("[WARN] unknown GIN_MODE %q, using release", cfg.GinMode)
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.SessionSecret == config.DefaultSessionSecret && gin.Mode() == gin.ReleaseMode {
		log.Printf("[WARN] SESSION_SECRET is not set, sessions and tokens use the development secret")
	}

	// 初始化存储
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	settings := service.NewAISettingsService(store, service.AISettings{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
	}, service.OpenAICompatibleModels(cfg.AITimeout))

	controller, err := service.NewController(store, service.NewAINutritionService(settings), service.ControllerOptions{
		Language:          cfg.Language,
		Location:          cfg.Location,
		ImageMaxDimension: cfg.ImageMaxDimension,
	})
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	api := handler.NewAPI(controller, settings, handler.NewTokenIssuer(cfg.SessionSecret, 0), cfg.Language)
	r := router.SetupRouter(api, cfg.SessionSecret)

	log.Printf("NutraScan listening on %s (storage=%s, ai=%s)", cfg.ListenAddr, cfg.StorageType, cfg.AIProvider)
	if err := r.Run(cfg.ListenAddr); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}
