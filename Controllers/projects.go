package Controllers

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Compass/Models"
	"Compass/Scoring"
	"Compass/Snapshots"
	"Compass/Validation"
)

// ProjectStatusController handles project lifecycle transitions. The status
// change always commits first; snapshot bookkeeping runs afterwards and is
// best-effort. A lost snapshot only means the report falls back to live
// computation, which is an acceptable degradation, so bookkeeping errors are
// logged and never surfaced to the caller.
type ProjectStatusController struct {
	DB    *gorm.DB
	Store *Snapshots.Store
}

// NewProjectStatusController creates a new ProjectStatusController
func NewProjectStatusController(db *gorm.DB) *ProjectStatusController {
	return &ProjectStatusController{DB: db, Store: Snapshots.NewStore(db)}
}

type CompletionParticipant struct {
	UserID uint    `json:"user_id" validate:"required"`
	Score  float64 `json:"score" validate:"gte=0,lte=10"`
}

type CompleteProjectInput struct {
	Participants []CompletionParticipant `json:"participants" validate:"required,min=1,dive"`
}

// CompleteProject marks a project completed and freezes its score.
func (pc *ProjectStatusController) CompleteProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var input CompleteProjectInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := Validation.Validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": Validation.TranslateError(err)})
	}

	var project Models.Project
	if err := pc.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}
	if project.Status == Models.ProjectStatusCompleted {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Project is already completed"})
	}

	// Phase 1: commit the status transition on its own
	completedAt := time.Now()
	if err := pc.DB.Model(&project).Updates(map[string]interface{}{
		"status":       Models.ProjectStatusCompleted,
		"completed_at": completedAt,
	}).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete project"})
	}

	// Phase 2: best-effort snapshot bookkeeping
	var actorID uint
	if user, ok := ctx.Locals("user").(Models.User); ok {
		actorID = user.Id
	}
	pc.freezeScore(project, completedAt, input.Participants, actorID)

	return ctx.JSON(fiber.Map{"message": "Project Completed Successfully"})
}

// freezeScore computes the live final score and stores it as the active
// snapshot together with each participant's allocation. Failures are logged
// only; the completed status already committed.
func (pc *ProjectStatusController) freezeScore(project Models.Project, completedAt time.Time, participants []CompletionParticipant, actorID uint) {
	availability := Scoring.ResolveAvailability(pc.DB)
	components := availability.Load(project)
	finalScore := Scoring.ComputeFinalScore(components)

	items := make([]Models.SnapshotItem, 0, len(participants))
	for _, participant := range participants {
		items = append(items, Models.SnapshotItem{
			UserID:         participant.UserID,
			UserEvalScore:  participant.Score,
			ConvertedScore: Scoring.TruncateToOneDecimal((finalScore / 10.0) * participant.Score),
		})
	}

	componentsJSON, err := json.Marshal(components)
	if err != nil {
		log.Printf("Failed to marshal score breakdown for project %d: %v", project.ID, err)
		componentsJSON = nil
	}

	if _, err := pc.Store.CreateSnapshot(project.ID, completedAt, componentsJSON, items, actorID); err != nil {
		log.Printf("Snapshot creation failed for project %d, reports will fall back to live scores: %v", project.ID, err)
	}
}

// CancelProject marks a project cancelled and retires its active snapshot.
func (pc *ProjectStatusController) CancelProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var project Models.Project
	if err := pc.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	if err := pc.DB.Model(&project).Updates(map[string]interface{}{
		"status":        Models.ProjectStatusCancelled,
		"cancel_reason": input.Reason,
	}).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel project"})
	}

	if err := pc.Store.DeactivateSnapshots(project.ID); err != nil {
		log.Printf("Snapshot deactivation failed for cancelled project %d: %v", project.ID, err)
	}

	return ctx.JSON(fiber.Map{"message": "Project Cancelled Successfully"})
}

// ReopenProject returns a project to in-progress. All snapshots are purged:
// a reopened project's next completion must start from fresh inputs.
func (pc *ProjectStatusController) ReopenProject(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid project ID"})
	}

	var project Models.Project
	if err := pc.DB.First(&project, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Project not found"})
	}

	if err := pc.DB.Model(&project).Updates(map[string]interface{}{
		"status":       Models.ProjectStatusInProgress,
		"completed_at": nil,
	}).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reopen project"})
	}

	if err := pc.Store.PurgeSnapshots(project.ID); err != nil {
		log.Printf("Snapshot purge failed for reopened project %d: %v", project.ID, err)
	}

	return ctx.JSON(fiber.Map{"message": "Project Reopened Successfully"})
}
