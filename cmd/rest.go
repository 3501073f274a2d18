package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/omnipost/omnipost/core/config"
	"github.com/omnipost/omnipost/ui/rest"
	"github.com/omnipost/omnipost/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the scheduling API and the dispatch clock",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	fiberConfig := fiber.Config{
		Network:               "tcp",
		AppName:               "OmniPost Dispatch Engine",
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	}
	if len(coreconfig.Global.App.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = coreconfig.Global.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	if coreconfig.Global.App.Debug {
		app.Use(logger.New())
	}

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Received termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		StopApp()
	}()

	apiGroup := app.Group(coreconfig.Global.App.BasePath + "/api")

	rest.InitRestPost(apiGroup, postUsecase)
	rest.InitRestNewsletter(apiGroup, newsletterUsecase)
	rest.InitRestPodcast(apiGroup, podcastUsecase)
	rest.InitRestBroadcast(apiGroup, broadcastUsecase)
	rest.InitRestSubscriber(apiGroup, subscriberUsecase)
	rest.InitRestHealth(apiGroup, storePing, dispatchEngine.Stats, channelRegistry.Channels)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	if err := schedulerClock.Start(context.Background()); err != nil {
		logrus.Fatalf("[REST] Failed to start scheduler clock: %v", err)
	}

	if err := app.Listen(":" + coreconfig.Global.App.Port); err != nil {
		logrus.Fatalf("[REST] Failed to start server: %v", err)
	}
}
