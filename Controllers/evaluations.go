package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Compass/Models"
	"Compass/Validation"
)

// EvaluationController handles live-path personal evaluation entries
type EvaluationController struct {
	DB *gorm.DB
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(db *gorm.DB) *EvaluationController {
	return &EvaluationController{DB: db}
}

type CreateEvaluationInput struct {
	Score   float64 `json:"score" validate:"gte=0,lte=10"`
	Comment string  `json:"comment"`
}

// CreateEvaluation records a new evaluation entry for the logged-in user.
// Entries accumulate; reports pick the most recent one per project.
func (ec *EvaluationController) CreateEvaluation(ctx *fiber.Ctx) error {
	projectID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var input CreateEvaluationInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := Validation.Validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": Validation.TranslateError(err)})
	}

	var project Models.Project
	if err := ec.DB.First(&project, projectID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not logged in"})
	}

	evaluation := Models.ProjectEvaluation{
		ProjectID: project.ID,
		UserID:    user.Id,
		Score:     input.Score,
		Comment:   input.Comment,
	}
	if err := ec.DB.Create(&evaluation).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create evaluation"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(evaluation)
}

// GetProjectEvaluations lists all evaluation entries for a project, newest
// first.
func (ec *EvaluationController) GetProjectEvaluations(ctx *fiber.Ctx) error {
	projectID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var evaluations []Models.ProjectEvaluation
	if err := ec.DB.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&evaluations).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve evaluations"})
	}

	return ctx.JSON(evaluations)
}
