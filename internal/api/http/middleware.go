package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/observability"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: request logging, error
// rendering and the per-request deadline. The gate is added by RegisterRoutes.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders any returned error, or recovered panic, as
// a failure BaseResponse whose HTTP status equals the body code.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.New(apperrors.InternalServerError)
			}
			if err == nil {
				return
			}

			status := statusFor(err)
			metrics.RecordError(c.Route().Path, c.Method(), status.Name)
			if status.Code >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("request_id", observability.RequestID(c)),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			err = apperrors.WriteFailure(c, status)
		}()
		return c.Next()
	}
}

// statusFor maps an error to a response status. Routing errors raised by
// fiber itself keep their own code and message.
func statusFor(err error) apperrors.Status {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.Status{
			Name:    "HTTP_" + strconv.Itoa(fiberErr.Code),
			Code:    fiberErr.Code,
			Message: fiberErr.Message,
		}
	}
	return apperrors.ToDomainError(err).Status
}
