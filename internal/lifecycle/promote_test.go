package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Project{},
		&models.Proposal{},
		&models.Communication{},
		&models.EmailProposalLink{},
		&models.EmailProjectLink{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// seedProposalWithLinks creates a negotiating proposal with n linked
// communications.
func seedProposalWithLinks(t *testing.T, db *gorm.DB, code string, n int) *models.Proposal {
	t.Helper()
	prop := &models.Proposal{
		Code:   code,
		Name:   "Loft Conversion",
		Client: "ClientCo",
		Value:  120000,
		Status: models.ProposalNegotiating,
	}
	mustCreate(t, db, prop)

	for i := 0; i < n; i++ {
		comm := &models.Communication{
			MessageID: code + string(rune('a'+i)),
			Sender:    "kim@clientco.com",
			Subject:   "re: " + code,
			SentAt:    time.Now(),
		}
		mustCreate(t, db, comm)
		mustCreate(t, db, &models.EmailProposalLink{
			CommunicationID: comm.ID,
			ProposalID:      prop.ID,
			Confidence:      0.95,
			Method:          models.MethodLearnedSender,
		})
	}
	return prop
}

func TestPromote_CreatesProjectAndCopiesLinks(t *testing.T) {
	db := testDB(t)
	prop := seedProposalWithLinks(t, db, "25 BK-041", 3)
	signed := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	res, err := Promote(db, "25 BK-041", PromoteOpts{SignedDate: signed, AutoCreate: true})
	if err != nil {
		t.Fatalf("Promote() error: %v", err)
	}
	if res.AlreadyDone {
		t.Error("AlreadyDone should be false on first promotion")
	}
	if !res.CreatedProject {
		t.Error("CreatedProject should be true when no project existed")
	}
	if res.LinksCopied != 3 {
		t.Errorf("LinksCopied = %d, want 3", res.LinksCopied)
	}

	var project models.Project
	if err := db.Where("code = ?", "25 BK-041").First(&project).Error; err != nil {
		t.Fatalf("project not created: %v", err)
	}
	if project.Status != models.ProjectActive {
		t.Errorf("project status = %q, want active", project.Status)
	}
	if project.SignedDate == nil || !project.SignedDate.Equal(signed) {
		t.Errorf("project signed date = %v, want %v", project.SignedDate, signed)
	}
	if project.ProposalID == nil || *project.ProposalID != prop.ID {
		t.Errorf("project back-reference = %v, want %d", project.ProposalID, prop.ID)
	}

	var reloaded models.Proposal
	if err := db.First(&reloaded, prop.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsArchived || reloaded.Status != models.ProposalWon {
		t.Errorf("proposal = %+v, want won+archived", reloaded)
	}
	if reloaded.ProjectID == nil || *reloaded.ProjectID != project.ID {
		t.Errorf("proposal forward link = %v, want %d", reloaded.ProjectID, project.ID)
	}

	// Every proposal link has a project counterpart with identical score and
	// method, and the proposal side is untouched.
	var propLinks []models.EmailProposalLink
	var projLinks []models.EmailProjectLink
	db.Where("proposal_id = ?", prop.ID).Find(&propLinks)
	db.Where("project_id = ?", project.ID).Find(&projLinks)
	if len(propLinks) != 3 {
		t.Errorf("proposal links = %d, want 3 (audit history preserved)", len(propLinks))
	}
	if len(projLinks) < len(propLinks) {
		t.Errorf("project links = %d, want >= %d", len(projLinks), len(propLinks))
	}
	for _, pl := range propLinks {
		found := false
		for _, jl := range projLinks {
			if jl.CommunicationID == pl.CommunicationID && jl.Confidence == pl.Confidence && jl.Method == pl.Method {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no project link for communication %d", pl.CommunicationID)
		}
	}
}

func TestPromote_Idempotent(t *testing.T) {
	db := testDB(t)
	seedProposalWithLinks(t, db, "25 BK-041", 2)

	first, err := Promote(db, "25 BK-041", PromoteOpts{AutoCreate: true})
	if err != nil {
		t.Fatalf("first Promote() error: %v", err)
	}

	second, err := Promote(db, "25 BK-041", PromoteOpts{AutoCreate: true})
	if err != nil {
		t.Fatalf("second Promote() error: %v", err)
	}
	if !second.AlreadyDone {
		t.Error("second promotion should report AlreadyDone")
	}
	if second.ProjectID != first.ProjectID {
		t.Errorf("second ProjectID = %d, want %d", second.ProjectID, first.ProjectID)
	}

	var projectCount, linkCount int64
	db.Model(&models.Project{}).Where("code = ?", "25 BK-041").Count(&projectCount)
	db.Model(&models.EmailProjectLink{}).Count(&linkCount)
	if projectCount != 1 {
		t.Errorf("projects = %d, want 1 (no duplicates)", projectCount)
	}
	if linkCount != 2 {
		t.Errorf("project links = %d, want 2 (no duplicates)", linkCount)
	}
}

func TestPromote_ExistingProject(t *testing.T) {
	db := testDB(t)
	project := &models.Project{Code: "25 BK-041", Title: "Pre-created", Status: models.ProjectProposal}
	mustCreate(t, db, project)
	seedProposalWithLinks(t, db, "25 BK-041", 1)

	res, err := Promote(db, "25 BK-041", PromoteOpts{})
	if err != nil {
		t.Fatalf("Promote() error: %v", err)
	}
	if res.CreatedProject {
		t.Error("should reuse the existing project row")
	}
	if res.ProjectID != project.ID {
		t.Errorf("ProjectID = %d, want %d", res.ProjectID, project.ID)
	}

	var reloaded models.Project
	db.First(&reloaded, project.ID)
	if reloaded.Status != models.ProjectActive {
		t.Errorf("status = %q, want active", reloaded.Status)
	}
}

func TestPromote_NoProjectWithoutAutoCreate(t *testing.T) {
	db := testDB(t)
	seedProposalWithLinks(t, db, "25 BK-041", 0)

	_, err := Promote(db, "25 BK-041", PromoteOpts{})
	if !errors.Is(err, ErrNoProject) {
		t.Errorf("err = %v, want ErrNoProject", err)
	}

	// The failed transition rolled back: proposal untouched.
	var prop models.Proposal
	db.Where("code = ?", "25 BK-041").First(&prop)
	if prop.IsArchived {
		t.Error("proposal must not be archived after a rolled-back transition")
	}
}

func TestPromote_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := Promote(db, "99 BK-999", PromoteOpts{AutoCreate: true})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPromote_LostIsTerminal(t *testing.T) {
	db := testDB(t)
	mustCreate(t, db, &models.Proposal{Code: "25 BK-077", Name: "X", Status: models.ProposalLost})

	_, err := Promote(db, "25 BK-077", PromoteOpts{AutoCreate: true})
	if !errors.Is(err, ErrLost) {
		t.Errorf("err = %v, want ErrLost", err)
	}
}

func TestPromote_LinkUnionSkipsExisting(t *testing.T) {
	db := testDB(t)
	prop := seedProposalWithLinks(t, db, "25 BK-041", 2)
	project := &models.Project{Code: "25 BK-041", Title: "Loft Conversion"}
	mustCreate(t, db, project)

	// One communication already linked to the project (e.g. by an earlier
	// exact-code match).
	var firstLink models.EmailProposalLink
	if err := db.Where("proposal_id = ?", prop.ID).Order("id ASC").First(&firstLink).Error; err != nil {
		t.Fatal(err)
	}
	mustCreate(t, db, &models.EmailProjectLink{
		CommunicationID: firstLink.CommunicationID,
		ProjectID:       project.ID,
		Confidence:      1.0,
		Method:          models.MethodExactCode,
	})

	res, err := Promote(db, "25 BK-041", PromoteOpts{})
	if err != nil {
		t.Fatalf("Promote() error: %v", err)
	}
	if res.LinksCopied != 1 {
		t.Errorf("LinksCopied = %d, want 1 (existing pair skipped)", res.LinksCopied)
	}

	var count int64
	db.Model(&models.EmailProjectLink{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 2 {
		t.Errorf("project links = %d, want 2", count)
	}
}
