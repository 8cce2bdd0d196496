package Apis

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ExportStaffReport handles GET /api/admin/staff/report/export and returns
// the same report as GetStaffReport rendered as a spreadsheet.
func (h *ReportHandler) ExportStaffReport(ctx *fiber.Ctx) error {
	report, status, err := h.buildFromQuery(ctx)
	if err != nil {
		return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	summaryRows := [][]interface{}{
		{"Employee", report.EmployeeName},
		{"Department", report.DepartmentName},
		{"Period", fmt.Sprintf("%s (%s)", report.Date, report.Unit)},
		{},
		{"Company Project Count", report.Performance.CompanyProjectCount},
		{"Company Project Score Sum", report.Performance.CompanyProjectScoreSum},
		{"Employee Project Count", report.Performance.EmployeeProjectCount},
		{"Employee Project Score Sum", report.Performance.EmployeeProjectScoreSum},
		{"Employee Allocated Score Sum", report.Performance.EmployeeAllocatedScoreSum},
		{"Employee Share Percent", report.Performance.EmployeeSharePercent},
		{},
		{"Total Days", report.Attendance.TotalDays},
		{"Actual Work Days", report.Attendance.ActualWorkDays},
		{"Total Work Hours", report.Attendance.TotalWorkHours},
		{"Average Work Hours", report.Attendance.AvgWorkHours},
		{"Office Days", report.Attendance.OfficeDays},
		{"Offsite Days", report.Attendance.OffsiteDays},
		{"Annual Leave Days", report.Attendance.AnnualLeaveDays},
		{"Half Leave Days", report.Attendance.HalfLeaveDays},
		{"Overtime Days", report.Attendance.OvertimeDays},
		{"Holiday Work Days", report.Attendance.HolidayWorkDays},
		{"Extra Work Days", report.Attendance.ExtraWorkDays},
	}
	for i, row := range summaryRows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(summarySheet, cell, value)
		}
	}

	projectSheet := "Projects"
	if _, err := f.NewSheet(projectSheet); err != nil {
		log.Println(err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build spreadsheet"})
	}

	headers := []string{"Project ID", "Project Name", "Evaluated At", "Final Score", "Personal Score", "Allocated Score", "Score Source"}
	for j, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		f.SetCellValue(projectSheet, cell, header)
	}
	for i, row := range report.Projects {
		values := []interface{}{
			row.ProjectID,
			row.ProjectName,
			row.EvaluatedAt.Format("2006-01-02 15:04:05"),
			row.ProjectFinalScore,
			row.PersonalScore,
			row.AllocatedScore,
			row.ScoreSource,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(projectSheet, cell, value)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		log.Println(err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build spreadsheet"})
	}

	filename := fmt.Sprintf("staff_report_%d_%s.xlsx", report.UserID, report.Date)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(buffer.Bytes())
}
