package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/itinerary-weather/internal/chat"
	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/view"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

// statusFor maps a domain error to the HTTP status returned to clients.
func statusFor(err error) int {
	var (
		ferr  *fiber.Error
		aerr  *weather.AggregationError
		verrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.As(err, &aerr):
		switch aerr.Kind {
		case weather.KindCityNotFound:
			return fiber.StatusBadRequest
		case weather.KindForecastUnavailable:
			return fiber.StatusNotFound
		default:
			return fiber.StatusBadGateway
		}
	case errors.Is(err, weather.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, itinerary.ErrInvalid),
		errors.Is(err, chat.ErrEmptySessionID),
		errors.As(err, &verrs):
		return fiber.StatusBadRequest
	case errors.Is(err, itinerary.ErrFormNotFound),
		errors.Is(err, itinerary.ErrSlotNotFound),
		errors.Is(err, view.ErrUnknownCity):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler returns the centralized fiber error handler. Every error
// response has the shape {"error": true, "message": ...}; aggregation
// failures also carry their kind and the offending city.
func NewErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		body := fiber.Map{
			"error":   true,
			"message": err.Error(),
		}

		var aerr *weather.AggregationError
		if errors.As(err, &aerr) {
			body["message"] = aerr.Message()
			body["kind"] = aerr.Kind
			body["city"] = aerr.City
		}

		if code >= fiber.StatusInternalServerError {
			log.WithFields(map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Errorf("request failed: %v", err)
		}
		return c.Status(code).JSON(body)
	}
}
