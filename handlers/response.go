package handlers

import (
	"errors"

	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

func success(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(models.Response{Status: statusSuccess, Data: data})
}

// failData reports an error under "data", failMessage under "message".
// Each endpoint keeps the key its clients already expect.
func failData(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(models.Response{Status: statusFail, Data: msg})
}

func failMessage(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(models.Response{Status: statusFail, Message: msg})
}

// HandleHealthCheck reports that the process is serving requests
func HandleHealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// HandleNotFound answers every unmatched route
func HandleNotFound(c *fiber.Ctx) error {
	return failData(c, fiber.StatusNotFound, "Not Found")
}

// ErrorHandler renders errors that escaped a handler in the fail envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return failMessage(c, code, err.Error())
}
