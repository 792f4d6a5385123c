package util

import "github.com/gofiber/fiber/v2"

// BaseResponse is the envelope every endpoint answers with.
// Field order on the wire is isSuccess, code, message, result.
type BaseResponse[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Result    *T     `json:"result,omitempty"`
}

// OK wraps a successful result.
func OK[T any](result T) BaseResponse[T] {
	return BaseResponse[T]{
		IsSuccess: Success.IsSuccess,
		Code:      Success.Code,
		Message:   Success.Message,
		Result:    &result,
	}
}

// Failure builds a body for a failed status; result is omitted.
func Failure(status Status) BaseResponse[any] {
	return BaseResponse[any]{
		IsSuccess: status.IsSuccess,
		Code:      status.Code,
		Message:   status.Message,
	}
}

// WriteFailure writes the failure body for status straight to the response.
func WriteFailure(c *fiber.Ctx, status Status) error {
	body, err := c.App().Config().JSONEncoder(Failure(status))
	if err != nil {
		return err
	}
	c.Status(status.Code)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}
