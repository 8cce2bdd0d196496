package Apis

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Compass/Models"
	"Compass/Snapshots"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&Models.Department{},
		&Models.User{},
		&Models.Project{},
		&Models.ProjectEvaluation{},
		&Models.AttendanceRecord{},
		&Models.CompletionSnapshot{},
		&Models.SnapshotItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

var (
	periodStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
)

// scoringProject builds a completed project whose live final score is 10.2:
// 2 + 3 + 1 + 1 + 2 + 1.26 = 10.26 truncated.
func scoringProject(name string, completedAt time.Time) Models.Project {
	profitRate := 1.26
	return Models.Project{
		Name:              name,
		Status:            Models.ProjectStatusCompleted,
		CompletedAt:       &completedAt,
		SalesScore:        2,
		ProjectPeriodDays: 3,
		Difficulty:        1,
		ProgressStep:      1,
		ParticipantCount:  2,
		ProfitRate:        &profitRate,
	}
}

func TestParsePeriod(t *testing.T) {
	start, end, err := ParsePeriod("month", "2025-06")
	if err != nil {
		t.Fatalf("ParsePeriod(month): %v", err)
	}
	if !start.Equal(periodStart) || !end.Equal(periodEnd) {
		t.Errorf("month range = [%v, %v)", start, end)
	}

	start, end, err = ParsePeriod("year", "2025")
	if err != nil {
		t.Fatalf("ParsePeriod(year): %v", err)
	}
	if start.Year() != 2025 || end.Year() != 2026 {
		t.Errorf("year range = [%v, %v)", start, end)
	}

	if _, _, err := ParsePeriod("month", "2025"); err == nil {
		t.Error("month with YYYY should be rejected")
	}
	if _, _, err := ParsePeriod("week", "2025-06"); err == nil {
		t.Error("unknown unit should be rejected")
	}
}

func TestPerformanceLiveScore(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	project := scoringProject("Harbor Renewal", periodStart.Add(24*time.Hour))
	if err := db.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	evaluation := Models.ProjectEvaluation{ProjectID: project.ID, UserID: 1, Score: 5}
	evaluation.CreatedAt = periodStart.Add(48 * time.Hour)
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatal(err)
	}

	summary, rows, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}

	if summary.CompanyProjectCount != 1 || summary.CompanyProjectScoreSum != 10.2 {
		t.Errorf("company summary = %+v", summary)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want 1", rows)
	}
	row := rows[0]
	if row.ScoreSource != ScoreSourceLive {
		t.Errorf("score_source = %q, want LIVE", row.ScoreSource)
	}
	if row.ProjectFinalScore != 10.2 {
		t.Errorf("project_final_score = %v, want 10.2", row.ProjectFinalScore)
	}
	// (10.2 / 10) * 5 = 5.1
	if row.AllocatedScore != 5.1 {
		t.Errorf("allocated_score = %v, want 5.1", row.AllocatedScore)
	}
	if summary.EmployeeProjectScoreSum != 10.2 || summary.EmployeeAllocatedScoreSum != 5.1 {
		t.Errorf("employee sums = %+v", summary)
	}
	if summary.EmployeeSharePercent != 50.0 {
		t.Errorf("share percent = %v, want 50.0", summary.EmployeeSharePercent)
	}
}

func TestPerformanceSnapshotWinsOverLive(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	completedAt := periodStart.Add(24 * time.Hour)
	project := scoringProject("Harbor Renewal", completedAt)
	if err := db.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	evaluation := Models.ProjectEvaluation{ProjectID: project.ID, UserID: 1, Score: 5}
	evaluation.CreatedAt = periodStart.Add(48 * time.Hour)
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatal(err)
	}

	// Freeze at a score different from the live 10.2
	if _, err := store.CreateSnapshot(project.ID, completedAt, nil, []Models.SnapshotItem{
		{UserID: 1, UserEvalScore: 5, ConvertedScore: 5.0},
		{UserID: 2, UserEvalScore: 4, ConvertedScore: 4.9},
	}, 99); err != nil {
		t.Fatal(err)
	}

	// Mutate the underlying components; the frozen score must not move
	if err := db.Model(&project).Update("sales_score", 100).Error; err != nil {
		t.Fatal(err)
	}

	summary, rows, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("rows = %v, want 1", rows)
	}
	row := rows[0]
	if row.ScoreSource != ScoreSourceSnapshot {
		t.Errorf("score_source = %q, want SNAPSHOT", row.ScoreSource)
	}
	// 5.0 + 4.9 = 9.9 frozen at completion time
	if row.ProjectFinalScore != 9.9 {
		t.Errorf("project_final_score = %v, want frozen 9.9", row.ProjectFinalScore)
	}
	if row.AllocatedScore != 5.0 || row.PersonalScore != 5 {
		t.Errorf("frozen item not used: %+v", row)
	}
	if !row.EvaluatedAt.Equal(completedAt) {
		t.Errorf("evaluated_at = %v, want completion time %v", row.EvaluatedAt, completedAt)
	}
	if summary.CompanyProjectScoreSum != 9.9 {
		t.Errorf("company sum = %v, want 9.9", summary.CompanyProjectScoreSum)
	}
}

func TestEvaluationTieBreak(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	projectA := scoringProject("Project A", periodStart.Add(24*time.Hour))
	projectB := scoringProject("Project B", periodStart.Add(24*time.Hour))
	if err := db.Create(&projectA).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&projectB).Error; err != nil {
		t.Fatal(err)
	}

	// Project A: identical timestamps, the higher id must win
	sameTime := periodStart.Add(48 * time.Hour)
	first := Models.ProjectEvaluation{ProjectID: projectA.ID, UserID: 1, Score: 3}
	first.CreatedAt = sameTime
	second := Models.ProjectEvaluation{ProjectID: projectA.ID, UserID: 1, Score: 7}
	second.CreatedAt = sameTime
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatal(err)
	}

	// Project B: the later timestamp wins even when inserted first
	late := Models.ProjectEvaluation{ProjectID: projectB.ID, UserID: 1, Score: 9}
	late.CreatedAt = periodStart.Add(72 * time.Hour)
	early := Models.ProjectEvaluation{ProjectID: projectB.ID, UserID: 1, Score: 2}
	early.CreatedAt = periodStart.Add(24 * time.Hour)
	if err := db.Create(&late).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&early).Error; err != nil {
		t.Fatal(err)
	}

	_, rows, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want 2", rows)
	}

	scores := map[uint]float64{}
	for _, row := range rows {
		scores[row.ProjectID] = row.PersonalScore
	}
	if scores[projectA.ID] != 7 {
		t.Errorf("project A used score %v, want 7 (higher id on tie)", scores[projectA.ID])
	}
	if scores[projectB.ID] != 9 {
		t.Errorf("project B used score %v, want 9 (latest timestamp)", scores[projectB.ID])
	}
}

func TestCompanyTotalsIncludeUnevaluatedProjects(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	mine := scoringProject("Mine", periodStart.Add(24*time.Hour))
	other := scoringProject("Someone Else's", periodStart.Add(24*time.Hour))
	if err := db.Create(&mine).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}
	evaluation := Models.ProjectEvaluation{ProjectID: mine.ID, UserID: 1, Score: 10}
	evaluation.CreatedAt = periodStart.Add(48 * time.Hour)
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatal(err)
	}

	summary, rows, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}
	if summary.CompanyProjectCount != 2 {
		t.Errorf("company count = %d, want 2", summary.CompanyProjectCount)
	}
	// Both projects at 10.2 each
	if summary.CompanyProjectScoreSum != 20.4 {
		t.Errorf("company sum = %v, want 20.4", summary.CompanyProjectScoreSum)
	}
	if len(rows) != 1 || summary.EmployeeProjectCount != 1 {
		t.Errorf("employee side should only see the evaluated project: %+v", summary)
	}
}

func TestShareZeroWhenEmployeeScoreSumNotPositive(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	// A project whose components are all zero scores 0
	completedAt := periodStart.Add(24 * time.Hour)
	project := Models.Project{
		Name:        "Empty",
		Status:      Models.ProjectStatusCompleted,
		CompletedAt: &completedAt,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	evaluation := Models.ProjectEvaluation{ProjectID: project.ID, UserID: 1, Score: 8}
	evaluation.CreatedAt = periodStart.Add(48 * time.Hour)
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatal(err)
	}

	summary, _, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}
	if summary.EmployeeSharePercent != 0 {
		t.Errorf("share percent = %v, want 0 for non-positive score sum", summary.EmployeeSharePercent)
	}
}

func TestCompanySetFallsBackToEvaluationActivity(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	project := scoringProject("Legacy Deploy", periodStart)
	project.Status = Models.ProjectStatusInProgress
	project.CompletedAt = nil
	if err := db.Create(&project).Error; err != nil {
		t.Fatal(err)
	}
	evaluation := Models.ProjectEvaluation{ProjectID: project.ID, UserID: 1, Score: 5}
	evaluation.CreatedAt = periodStart.Add(48 * time.Hour)
	if err := db.Create(&evaluation).Error; err != nil {
		t.Fatal(err)
	}

	// Without a completion timestamp the canonical selection finds nothing
	summary, _, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary: %v", err)
	}
	if summary.CompanyProjectCount != 0 {
		t.Errorf("company count = %d, want 0 under canonical selection", summary.CompanyProjectCount)
	}

	// Deployments without the column fall back to evaluation activity
	if err := db.Migrator().DropIndex(&Models.Project{}, "idx_projects_completed_at"); err != nil {
		t.Fatalf("failed to drop index: %v", err)
	}
	if err := db.Migrator().DropColumn(&Models.Project{}, "completed_at"); err != nil {
		t.Fatalf("failed to drop column: %v", err)
	}

	summary, rows, err := BuildPerformanceSummary(db, store, 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("BuildPerformanceSummary after drop: %v", err)
	}
	if summary.CompanyProjectCount != 1 || len(rows) != 1 {
		t.Errorf("fallback selection missed the project: %+v", summary)
	}
	if rows[0].ScoreSource != ScoreSourceLive {
		t.Errorf("score_source = %q, want LIVE", rows[0].ScoreSource)
	}
}

func TestBuildStaffReportUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	store := Snapshots.NewStore(db)

	if _, err := BuildStaffReport(db, store, 42, periodStart, periodEnd); err == nil {
		t.Error("unknown employee should be rejected")
	}
}
