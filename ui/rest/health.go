package rest

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/omnipost/omnipost/scheduler"
)

type Health struct {
	Ping     func(ctx context.Context) error
	Stats    func() scheduler.Stats
	Channels func() []string
}

func InitRestHealth(app fiber.Router, ping func(ctx context.Context) error, stats func() scheduler.Stats, channels func() []string) Health {
	rest := Health{Ping: ping, Stats: stats, Channels: channels}
	app.Get("/health", rest.Check)
	return rest
}

type healthReport struct {
	Store     string          `json:"store"`
	Channels  []string        `json:"channels"`
	Scheduler scheduler.Stats `json:"scheduler"`
}

func (controller *Health) Check(c *fiber.Ctx) error {
	report := healthReport{
		Store:     "ok",
		Channels:  controller.Channels(),
		Scheduler: controller.Stats(),
	}

	if err := controller.Ping(c.UserContext()); err != nil {
		report.Store = "unreachable"
		return c.Status(503).JSON(utils.ResponseData{
			Status:  503,
			Code:    "STORE_UNREACHABLE",
			Message: err.Error(),
			Results: report,
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "OmniPost is healthy",
		Results: report,
	})
}
