package Apis

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Compass/Models"
	"Compass/Scoring"
	"Compass/Snapshots"
)

const (
	ScoreSourceSnapshot = "SNAPSHOT"
	ScoreSourceLive     = "LIVE"
)

var ErrUserNotFound = errors.New("user not found")

type PerformanceSummary struct {
	CompanyProjectCount       int     `json:"company_project_count"`
	CompanyProjectScoreSum    float64 `json:"company_project_score_sum"`
	EmployeeProjectCount      int     `json:"employee_project_count"`
	EmployeeProjectScoreSum   float64 `json:"employee_project_score_sum"`
	EmployeeAllocatedScoreSum float64 `json:"employee_allocated_score_sum"`
	EmployeeSharePercent      float64 `json:"employee_share_percent"`
}

type AttendanceSummary struct {
	TotalDays      int     `json:"total_days"`
	ActualWorkDays int     `json:"actual_work_days"`
	TotalWorkHours float64 `json:"total_work_hours"`
	AvgWorkHours   float64 `json:"avg_work_hours"`

	OfficeDays      int     `json:"office_days"`
	OffsiteDays     int     `json:"offsite_days"`
	AnnualLeaveDays float64 `json:"annual_leave_days"`
	HalfLeaveDays   float64 `json:"half_leave_days"`
	OvertimeDays    int     `json:"overtime_days"`
	HolidayWorkDays int     `json:"holiday_work_days"`
	ExtraWorkDays   int     `json:"extra_work_days"`
}

// ProjectRow is one evaluated project in the report. ScoreSource tells
// consumers whether the score came from a completion snapshot or a live
// recomputation, so frozen and recomputed values can be told apart.
type ProjectRow struct {
	ProjectID         uint      `json:"project_id"`
	ProjectName       string    `json:"project_name"`
	EvaluatedAt       time.Time `json:"evaluated_at"`
	ProjectFinalScore float64   `json:"project_final_score"`
	PersonalScore     float64   `json:"personal_score"`
	AllocatedScore    float64   `json:"allocated_score"`
	ScoreSource       string    `json:"score_source"`
}

type StaffReport struct {
	Unit           string             `json:"unit"`
	Date           string             `json:"date"`
	UserID         uint               `json:"user_id"`
	EmployeeName   string             `json:"employee_name"`
	DepartmentName string             `json:"department_name,omitempty"`
	Performance    PerformanceSummary `json:"performance"`
	Attendance     AttendanceSummary  `json:"attendance"`
	Projects       []ProjectRow       `json:"projects"`
}

// ReportHandler serves the admin staff report endpoints
type ReportHandler struct {
	DB    *gorm.DB
	Store *Snapshots.Store
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db, Store: Snapshots.NewStore(db)}
}

// ParsePeriod resolves a (unit, date) pair to a half-open [start, end)
// range. month expects YYYY-MM, year expects YYYY.
func ParsePeriod(unit, date string) (time.Time, time.Time, error) {
	switch unit {
	case "month":
		start, err := time.Parse("2006-01", date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("month requires date=YYYY-MM")
		}
		return start, start.AddDate(0, 1, 0), nil
	case "year":
		start, err := time.Parse("2006", date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("year requires date=YYYY")
		}
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unit must be month or year")
}

// GetStaffReport handles GET /api/admin/staff/report
func (h *ReportHandler) GetStaffReport(ctx *fiber.Ctx) error {
	report, status, err := h.buildFromQuery(ctx)
	if err != nil {
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(report)
}

func (h *ReportHandler) buildFromQuery(ctx *fiber.Ctx) (*StaffReport, int, error) {
	unit := ctx.Query("unit")
	date := ctx.Query("date")
	userID, err := strconv.Atoi(ctx.Query("user_id"))
	if err != nil || userID <= 0 {
		return nil, fiber.StatusBadRequest, fmt.Errorf("user_id is required")
	}

	start, end, err := ParsePeriod(unit, date)
	if err != nil {
		return nil, fiber.StatusBadRequest, err
	}

	report, err := BuildStaffReport(h.DB, h.Store, uint(userID), start, end)
	if errors.Is(err, ErrUserNotFound) {
		return nil, fiber.StatusNotFound, err
	}
	if err != nil {
		return nil, fiber.StatusInternalServerError, err
	}
	report.Unit = unit
	report.Date = date
	return report, fiber.StatusOK, nil
}

// BuildStaffReport assembles the full report for one employee and period.
func BuildStaffReport(db *gorm.DB, store *Snapshots.Store, userID uint, start, end time.Time) (*StaffReport, error) {
	var user Models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	departmentName := ""
	if user.DepartmentID != nil {
		var department Models.Department
		if err := db.First(&department, *user.DepartmentID).Error; err == nil {
			departmentName = department.Name
		}
	}

	performance, projects, err := BuildPerformanceSummary(db, store, userID, start, end)
	if err != nil {
		return nil, err
	}
	attendance := BuildAttendanceSummary(db, userID, start, end)

	return &StaffReport{
		UserID:         user.Id,
		EmployeeName:   user.Name,
		DepartmentName: departmentName,
		Performance:    performance,
		Attendance:     attendance,
		Projects:       projects,
	}, nil
}

// BuildPerformanceSummary computes the company-wide and per-employee
// performance numbers for the period.
//
// Per-project scores come from the active completion snapshot when one
// exists and are recomputed live otherwise. Company totals cover the whole
// project set; employee totals only the projects the employee evaluated.
func BuildPerformanceSummary(db *gorm.DB, store *Snapshots.Store, userID uint, start, end time.Time) (PerformanceSummary, []ProjectRow, error) {
	summary := PerformanceSummary{}
	availability := Scoring.ResolveAvailability(db)

	// 1) Company project set for the period. Completion time is canonical;
	// evaluation activity is the fallback for deployments without the column.
	var projects []Models.Project
	if availability.CompletedAt {
		if err := db.Where("completed_at >= ? AND completed_at < ?", start, end).
			Find(&projects).Error; err != nil {
			return summary, nil, err
		}
	} else {
		var projectIDs []uint
		if err := db.Model(&Models.ProjectEvaluation{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Distinct("project_id").
			Pluck("project_id", &projectIDs).Error; err != nil {
			return summary, nil, err
		}
		if len(projectIDs) > 0 {
			if err := db.Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
				return summary, nil, err
			}
		}
	}
	if len(projects) == 0 {
		return summary, nil, nil
	}

	projectMap := make(map[uint]Models.Project, len(projects))
	projectIDs := make([]uint, 0, len(projects))
	for _, project := range projects {
		projectMap[project.ID] = project
		projectIDs = append(projectIDs, project.ID)
	}

	// 2) Frozen scores take precedence over live recomputation
	snapshotMap, err := store.ActiveSnapshotsFor(projectIDs)
	if err != nil {
		log.Printf("Active snapshot lookup failed, falling back to live scores: %v", err)
		snapshotMap = map[uint]Models.CompletionSnapshot{}
	}
	itemMap, err := store.ActiveItemsForUser(projectIDs, userID)
	if err != nil {
		log.Printf("Snapshot item lookup failed, falling back to derived allocations: %v", err)
		itemMap = map[uint]Models.SnapshotItem{}
	}

	finalScoreFor := func(project Models.Project) float64 {
		if snap, ok := snapshotMap[project.ID]; ok {
			return snap.FinalProjectScore
		}
		return Scoring.ComputeFinalScore(availability.Load(project))
	}

	var companySum float64
	for _, project := range projects {
		companySum += finalScoreFor(project)
	}
	summary.CompanyProjectCount = len(projects)
	summary.CompanyProjectScoreSum = Scoring.TruncateToOneDecimal(companySum)

	// 3) The employee's evaluated projects: most recent evaluation per
	// project, ties broken by highest id.
	var evaluations []Models.ProjectEvaluation
	if err := db.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Order("created_at DESC, id DESC").
		Find(&evaluations).Error; err != nil {
		return summary, nil, err
	}

	var rows []ProjectRow
	var employeeScoreSum, allocatedSum float64
	seen := make(map[uint]bool)

	for _, evaluation := range evaluations {
		if seen[evaluation.ProjectID] {
			continue
		}
		seen[evaluation.ProjectID] = true

		project, ok := projectMap[evaluation.ProjectID]
		if !ok {
			continue
		}

		finalScore := finalScoreFor(project)
		personalScore := evaluation.Score
		allocated := Scoring.TruncateToOneDecimal((finalScore / 10.0) * personalScore)
		evaluatedAt := evaluation.CreatedAt
		source := ScoreSourceLive

		if snap, hasSnapshot := snapshotMap[project.ID]; hasSnapshot {
			source = ScoreSourceSnapshot
			evaluatedAt = snap.CompletedAt
			if item, hasItem := itemMap[project.ID]; hasItem {
				personalScore = item.UserEvalScore
				allocated = item.ConvertedScore
			} else {
				allocated = Scoring.TruncateToOneDecimal((finalScore / 10.0) * personalScore)
			}
		}

		rows = append(rows, ProjectRow{
			ProjectID:         project.ID,
			ProjectName:       project.Name,
			EvaluatedAt:       evaluatedAt,
			ProjectFinalScore: finalScore,
			PersonalScore:     personalScore,
			AllocatedScore:    allocated,
			ScoreSource:       source,
		})
		employeeScoreSum += finalScore
		allocatedSum += allocated
	}

	summary.EmployeeProjectCount = len(rows)
	summary.EmployeeProjectScoreSum = Scoring.TruncateToOneDecimal(employeeScoreSum)
	summary.EmployeeAllocatedScoreSum = Scoring.TruncateToOneDecimal(allocatedSum)
	if employeeScoreSum > 0 {
		summary.EmployeeSharePercent = Scoring.TruncateToOneDecimal((allocatedSum / employeeScoreSum) * 100.0)
	}

	return summary, rows, nil
}

// BuildAttendanceSummary classifies and sums the employee's attendance
// records for the period. It always returns a summary; missing or bad data
// degrades to zeros.
func BuildAttendanceSummary(db *gorm.DB, userID uint, start, end time.Time) AttendanceSummary {
	summary := AttendanceSummary{}

	var records []Models.AttendanceRecord
	if err := db.Where("user_id = ? AND work_date >= ? AND work_date < ?", userID, start, end).
		Find(&records).Error; err != nil {
		log.Printf("Attendance lookup failed for user %d: %v", userID, err)
		return summary
	}
	if len(records) == 0 {
		return summary
	}

	distinctDates := make(map[string]bool)
	totalMinutes := 0
	halfLeaveCount := 0

	for _, record := range records {
		distinctDates[record.WorkDate.Format("2006-01-02")] = true

		// Negative or zero spans are data errors and contribute nothing
		if record.CheckInAt != nil && record.CheckOutAt != nil {
			diff := record.CheckOutAt.Sub(*record.CheckInAt).Minutes()
			if diff > 0 {
				totalMinutes += int(diff)
			}
		}

		switch record.ShiftType {
		case Models.ShiftOffice:
			summary.OfficeDays++
		case Models.ShiftOutside:
			summary.OffsiteDays++
		case Models.ShiftLeave:
			summary.AnnualLeaveDays++
		case Models.ShiftHalfLeave:
			halfLeaveCount++
		}

		if record.IsHolidayWork {
			summary.HolidayWorkDays++
		}
		if record.Status == Models.AttendanceStatusOvertime {
			summary.OvertimeDays++
		}
		if record.Status == Models.AttendanceStatusExtra {
			summary.ExtraWorkDays++
		}

		// A day counts as worked when both punches exist and it is not a
		// leave day
		if record.ShiftType != Models.ShiftLeave && record.ShiftType != Models.ShiftHalfLeave &&
			record.CheckInAt != nil && record.CheckOutAt != nil {
			summary.ActualWorkDays++
		}
	}

	summary.TotalDays = len(distinctDates)
	summary.HalfLeaveDays = float64(halfLeaveCount) * 0.5
	summary.TotalWorkHours = roundHours(float64(totalMinutes) / 60.0)
	if summary.ActualWorkDays > 0 {
		summary.AvgWorkHours = roundHours(summary.TotalWorkHours / float64(summary.ActualWorkDays))
	}

	return summary
}

func roundHours(x float64) float64 {
	return math.Round(x*100) / 100
}
