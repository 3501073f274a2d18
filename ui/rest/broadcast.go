package rest

import (
	domainBroadcast "github.com/omnipost/omnipost/domains/broadcast"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Broadcast struct {
	Service domainBroadcast.IBroadcastUsecase
}

func InitRestBroadcast(app fiber.Router, service domainBroadcast.IBroadcastUsecase) Broadcast {
	rest := Broadcast{Service: service}
	app.Post("/broadcasts", rest.Create)
	app.Get("/broadcasts", rest.List)
	app.Get("/broadcasts/:id", rest.GetByID)
	app.Get("/broadcasts/:id/recipients", rest.Recipients)
	app.Post("/broadcasts/:id/pause", rest.Pause)
	app.Post("/broadcasts/:id/resume", rest.Resume)
	return rest
}

func (controller *Broadcast) Create(c *fiber.Ctx) error {
	var request domainBroadcast.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	broadcast, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create broadcast",
		Results: broadcast,
	})
}

func (controller *Broadcast) List(c *fiber.Ctx) error {
	broadcasts, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch broadcasts",
		Results: broadcasts,
	})
}

// GetByID returns the broadcast with its live progress counters.
func (controller *Broadcast) GetByID(c *fiber.Ctx) error {
	broadcast, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch broadcast",
		Results: broadcast,
	})
}

func (controller *Broadcast) Recipients(c *fiber.Ctx) error {
	recipients, err := controller.Service.Recipients(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch broadcast recipients",
		Results: recipients,
	})
}

func (controller *Broadcast) Pause(c *fiber.Ctx) error {
	err := controller.Service.Pause(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success pause broadcast",
	})
}

func (controller *Broadcast) Resume(c *fiber.Ctx) error {
	err := controller.Service.Resume(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success resume broadcast",
	})
}
