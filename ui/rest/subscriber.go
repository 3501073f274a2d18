package rest

import (
	domainSubscriber "github.com/omnipost/omnipost/domains/subscriber"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Subscriber struct {
	Service domainSubscriber.ISubscriberUsecase
}

func InitRestSubscriber(app fiber.Router, service domainSubscriber.ISubscriberUsecase) Subscriber {
	rest := Subscriber{Service: service}
	app.Post("/subscribers", rest.Create)
	app.Get("/subscribers/:owner_id", rest.ListByOwner)
	app.Delete("/subscribers/:id", rest.Delete)
	return rest
}

func (controller *Subscriber) Create(c *fiber.Ctx) error {
	var request domainSubscriber.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	sub, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success add subscriber",
		Results: sub,
	})
}

func (controller *Subscriber) ListByOwner(c *fiber.Ctx) error {
	subs, err := controller.Service.ListByOwner(c.UserContext(), c.Params("owner_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch subscribers",
		Results: subs,
	})
}

func (controller *Subscriber) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success remove subscriber",
	})
}
