package response

import "github.com/gofiber/fiber/v2"

// Response is the JSON envelope every endpoint answers with. Scanner
// devices and the Telegram mini-app both key off the success flag rather
// than the HTTP status, so it is always present.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func write(c *fiber.Ctx, status int, body Response) error {
	return c.Status(status).JSON(body)
}

// Success sends a 200 with the given message and payload
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a 201 for a newly persisted resource
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Error sends a failure envelope with an arbitrary status code
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return write(c, statusCode, Response{Success: false, Error: message})
}

// BadRequest rejects malformed input (400)
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized rejects missing or invalid credentials (401)
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden rejects authenticated callers without the needed role (403)
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound reports a missing student, payment or other resource (404)
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict reports a clash with existing state, such as an overlapping
// mess cut or an already claimed payment cycle (409)
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError reports an unexpected failure (500)
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
