package rest

import (
	domainNewsletter "github.com/omnipost/omnipost/domains/newsletter"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Newsletter struct {
	Service domainNewsletter.INewsletterUsecase
}

func InitRestNewsletter(app fiber.Router, service domainNewsletter.INewsletterUsecase) Newsletter {
	rest := Newsletter{Service: service}
	app.Post("/newsletters", rest.Schedule)
	app.Get("/newsletters", rest.List)
	app.Get("/newsletters/:id", rest.GetByID)
	app.Post("/newsletters/:id/cancel", rest.Cancel)
	app.Post("/newsletters/:id/retry", rest.Retry)
	return rest
}

func (controller *Newsletter) Schedule(c *fiber.Ctx) error {
	var request domainNewsletter.ScheduleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	issue, err := controller.Service.Schedule(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success schedule newsletter",
		Results: issue,
	})
}

func (controller *Newsletter) List(c *fiber.Ctx) error {
	issues, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch newsletters",
		Results: issues,
	})
}

func (controller *Newsletter) GetByID(c *fiber.Ctx) error {
	issue, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch newsletter",
		Results: issue,
	})
}

func (controller *Newsletter) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel newsletter",
	})
}

func (controller *Newsletter) Retry(c *fiber.Ctx) error {
	err := controller.Service.Retry(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success retry newsletter",
	})
}
