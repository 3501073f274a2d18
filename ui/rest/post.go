package rest

import (
	domainPost "github.com/omnipost/omnipost/domains/post"
	"github.com/omnipost/omnipost/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Post struct {
	Service domainPost.IPostUsecase
}

func InitRestPost(app fiber.Router, service domainPost.IPostUsecase) Post {
	rest := Post{Service: service}
	app.Post("/posts", rest.Schedule)
	app.Get("/posts", rest.List)
	app.Get("/posts/:id", rest.GetByID)
	app.Post("/posts/:id/cancel", rest.Cancel)
	app.Post("/posts/:id/retry", rest.Retry)
	return rest
}

func (controller *Post) Schedule(c *fiber.Ctx) error {
	var request domainPost.ScheduleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	post, err := controller.Service.Schedule(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success schedule post",
		Results: post,
	})
}

func (controller *Post) List(c *fiber.Ctx) error {
	posts, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch posts",
		Results: posts,
	})
}

func (controller *Post) GetByID(c *fiber.Ctx) error {
	post, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch post",
		Results: post,
	})
}

func (controller *Post) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel post",
	})
}

func (controller *Post) Retry(c *fiber.Ctx) error {
	err := controller.Service.Retry(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success retry post",
	})
}
