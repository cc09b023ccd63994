package handlers

import (
	"cartracker/internal/middleware"
	"cartracker/internal/models"
	"cartracker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CarHandler handles HTTP requests for car records.
type CarHandler struct {
	service  *services.CarService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(service *services.CarService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the car routes. Listing is guarded by browserAuth,
// which redirects; the mutating routes are guarded by apiAuth, which answers 401.
func (h *CarHandler) RegisterRoutes(router fiber.Router, browserAuth, apiAuth fiber.Handler) {
	router.Get("/api/cars", browserAuth, h.HandleList)
	router.Post("/api/cars", apiAuth, h.HandleCreate)
	router.Put("/api/cars/:id", apiAuth, h.HandleUpdate)
	router.Delete("/api/cars/:id", apiAuth, h.HandleDelete)
}

// CreateCarRequest is the body of POST /api/cars.
type CreateCarRequest struct {
	Model    string   `json:"model" validate:"required"`
	Year     *FlexInt `json:"year" validate:"required"`
	MPG      *FlexInt `json:"mpg" validate:"required"`
	FuelType string   `json:"fuelType" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	Features []string `json:"features"`
}

// UpdateCarRequest is the body of PUT /api/cars/:id. Absent or empty fields are left unchanged.
type UpdateCarRequest struct {
	Model    string   `json:"model"`
	Year     *FlexInt `json:"year"`
	MPG      *FlexInt `json:"mpg"`
	FuelType string   `json:"fuelType" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	Features []string `json:"features"`
}

func (r UpdateCarRequest) toUpdate() models.CarUpdate {
	upd := models.CarUpdate{
		Year:     intPtr(r.Year),
		MPG:      intPtr(r.MPG),
		Features: r.Features,
	}
	if r.Model != "" {
		model := r.Model
		upd.Model = &model
	}
	if r.FuelType != "" {
		fuel := models.FuelType(r.FuelType)
		upd.FuelType = &fuel
	}
	return upd
}

// HandleList returns the caller's cars with their computed age.
func (h *CarHandler) HandleList(c *fiber.Ctx) error {
	userID, _ := middleware.Identity(c)
	cars, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		h.log.Error("error fetching cars", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch cars",
		})
	}
	return c.JSON(cars)
}

// HandleCreate adds a car for the caller.
func (h *CarHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateCarRequest
	if err := c.BodyParser(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	userID, username := middleware.Identity(c)
	id, err := h.service.Add(c.UserContext(), userID, username, services.CarInput{
		Model:    req.Model,
		Year:     int(*req.Year),
		MPG:      int(*req.MPG),
		FuelType: models.FuelType(req.FuelType),
		Features: req.Features,
	})
	if err != nil {
		h.log.Error("error adding car", zap.String("user_id", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to add car",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"carId":   id,
	})
}

// HandleUpdate changes the supplied fields of one of the caller's cars.
func (h *CarHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateCarRequest
	if err := c.BodyParser(&req); err != nil {
		return h.invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	userID, _ := middleware.Identity(c)
	carID := c.Params("id")
	if err := h.service.Update(c.UserContext(), userID, carID, req.toUpdate()); err != nil {
		h.log.Error("error updating car", zap.String("car_id", carID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update car",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleDelete removes one of the caller's cars.
func (h *CarHandler) HandleDelete(c *fiber.Ctx) error {
	userID, _ := middleware.Identity(c)
	carID := c.Params("id")
	if err := h.service.Delete(c.UserContext(), userID, carID); err != nil {
		h.log.Error("error deleting car", zap.String("car_id", carID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete car",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *CarHandler) invalidBody(c *fiber.Ctx, err error) error {
	h.log.Debug("invalid car body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
	})
}
