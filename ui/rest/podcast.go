package rest

import (
	domainPodcast "github.com/omnipost/omnipost/domains/podcast"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Podcast struct {
	Service domainPodcast.IPodcastUsecase
}

func InitRestPodcast(app fiber.Router, service domainPodcast.IPodcastUsecase) Podcast {
	rest := Podcast{Service: service}
	app.Post("/episodes", rest.Schedule)
	app.Get("/episodes", rest.List)
	app.Get("/episodes/:id", rest.GetByID)
	app.Post("/episodes/:id/cancel", rest.Cancel)
	app.Post("/episodes/:id/retry", rest.Retry)
	return rest
}

func (controller *Podcast) Schedule(c *fiber.Ctx) error {
	var request domainPodcast.ScheduleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	episode, err := controller.Service.Schedule(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success schedule episode",
		Results: episode,
	})
}

func (controller *Podcast) List(c *fiber.Ctx) error {
	episodes, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch episodes",
		Results: episodes,
	})
}

func (controller *Podcast) GetByID(c *fiber.Ctx) error {
	episode, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch episode",
		Results: episode,
	})
}

func (controller *Podcast) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel episode",
	})
}

func (controller *Podcast) Retry(c *fiber.Ctx) error {
	err := controller.Service.Retry(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success retry episode",
	})
}
