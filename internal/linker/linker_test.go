package linker

import (
	"errors"
	"testing"
	"time"

	"github.com/veldhuis/atelier/internal/config"
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
		&models.LearnedPattern{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	cfg, err := config.Parse([]byte("studio: Brandt Kessler\n"))
	if err != nil {
		panic(err)
	}
	return cfg
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func newComm(db *gorm.DB, t *testing.T, messageID, sender, subject, body string) *models.Communication {
	t.Helper()
	c := &models.Communication{
		MessageID: messageID,
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now(),
	}
	mustCreate(t, db, c)
	return c
}

func TestExtractCode(t *testing.T) {
	re, err := codePattern("BK")
	if err != nil {
		t.Fatalf("codePattern: %v", err)
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"canonical", "Re: 25 BK-013 Site Visit Update", "25 BK-013"},
		{"no space", "invoice_25BK-013_final.pdf", "25 BK-013"},
		{"embedded in sentence", "see 24 BK-101 attachments", "24 BK-101"},
		{"no code", "Lunch on Friday?", ""},
		{"wrong prefix", "25 XX-013 update", ""},
		{"short sequence", "25 BK-13 update", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCode(re, tt.text); got != tt.want {
				t.Errorf("ExtractCode(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jan Brandt <Jan@BrandtKessler.com>", "jan@brandtkessler.com"},
		{"  kim@studio.dk ", "kim@studio.dk"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeAddress(tt.in); got != tt.want {
			t.Errorf("normalizeAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatch_ExactCodeProject(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	project := &models.Project{Code: "25 BK-013", Title: "Harbor Pavilion", Status: models.ProjectActive}
	mustCreate(t, db, project)

	comm := newComm(db, t, "<m1@x>", "unknown@nowhere.test", "Re: 25 BK-013 Site Visit Update", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil {
		t.Fatal("Match() returned no candidate")
	}
	if cand.TargetKind != models.TargetProject || cand.TargetID != project.ID {
		t.Errorf("candidate target = %s %d, want project %d", cand.TargetKind, cand.TargetID, project.ID)
	}
	if cand.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", cand.Confidence)
	}
	if cand.Method != models.MethodExactCode {
		t.Errorf("method = %q, want %q", cand.Method, models.MethodExactCode)
	}
}

func TestMatch_ExactCodeInFilename(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	prop := &models.Proposal{Code: "25 BK-041", Name: "Loft Conversion"}
	mustCreate(t, db, prop)

	comm := &models.Communication{
		MessageID: "<doc1@x>",
		Sender:    "scanner@office.test",
		Subject:   "Scanned document",
		Filename:  "contract_25BK-041_signed.pdf",
		SentAt:    time.Now(),
	}
	mustCreate(t, db, comm)

	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil || cand.TargetKind != models.TargetProposal || cand.TargetID != prop.ID {
		t.Fatalf("candidate = %+v, want proposal %d", cand, prop.ID)
	}
}

func TestMatch_ProjectWinsOverProposalWithSameCode(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	prop := &models.Proposal{Code: "25 BK-020", Name: "Old proposal", IsArchived: true}
	mustCreate(t, db, prop)
	project := &models.Project{Code: "25 BK-020", Title: "Promoted", Status: models.ProjectActive}
	mustCreate(t, db, project)

	comm := newComm(db, t, "<m2@x>", "a@b.test", "25 BK-020 kickoff", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil || cand.TargetKind != models.TargetProject {
		t.Errorf("candidate = %+v, want project match", cand)
	}
}

func TestMatch_LearnedSenderExactConfidence(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	prop := &models.Proposal{Code: "25 BK-030", Name: "Villa"}
	mustCreate(t, db, prop)
	mustCreate(t, db, &models.LearnedPattern{
		PatternType: models.PatternSender,
		PatternKey:  "kim@clientco.com",
		TargetKind:  models.TargetProposal,
		TargetID:    prop.ID,
		Confidence:  0.95,
	})

	comm := newComm(db, t, "<m3@x>", "Kim Larsen <Kim@ClientCo.com>", "quick question", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil {
		t.Fatal("expected learned sender match")
	}
	if cand.Method != models.MethodLearnedSender {
		t.Errorf("method = %q", cand.Method)
	}
	// Confidence equals the stored pattern confidence exactly.
	if cand.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", cand.Confidence)
	}
}

func TestMatch_LearnedDomainWeighted(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	project := &models.Project{Code: "25 BK-050", Title: "Bridge House"}
	mustCreate(t, db, project)
	mustCreate(t, db, &models.LearnedPattern{
		PatternType: models.PatternDomain,
		PatternKey:  "clientco.com",
		TargetKind:  models.TargetProject,
		TargetID:    project.ID,
		Confidence:  0.9,
	})

	comm := newComm(db, t, "<m4@x>", "new.person@clientco.com", "introductions", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil {
		t.Fatal("expected learned domain match")
	}
	if cand.Method != models.MethodLearnedDomain {
		t.Errorf("method = %q", cand.Method)
	}
	// Domain confidence is always stored confidence * 0.85.
	want := 0.9 * 0.85
	if cand.Confidence != want {
		t.Errorf("confidence = %v, want %v", cand.Confidence, want)
	}
}

func TestMatch_GenericDomainSkipped(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	project := &models.Project{Code: "25 BK-060", Title: "X"}
	mustCreate(t, db, project)
	mustCreate(t, db, &models.LearnedPattern{
		PatternType: models.PatternDomain,
		PatternKey:  "gmail.com",
		TargetKind:  models.TargetProject,
		TargetID:    project.ID,
		Confidence:  0.9,
	})

	comm := newComm(db, t, "<m5@x>", "someone@gmail.com", "hello", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand != nil {
		t.Errorf("generic provider domain should never match, got %+v", cand)
	}
}

func TestMatch_NoSenderIsMalformed(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()

	comm := newComm(db, t, "<m6@x>", "", "no code here", "")
	_, err := Match(db, cfg, comm)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestMatch_UnknownCodeFallsThrough(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	prop := &models.Proposal{Code: "25 BK-070", Name: "Y"}
	mustCreate(t, db, prop)
	mustCreate(t, db, &models.LearnedPattern{
		PatternType: models.PatternSender,
		PatternKey:  "kim@clientco.com",
		TargetKind:  models.TargetProposal,
		TargetID:    prop.ID,
		Confidence:  0.95,
	})

	// Subject carries a code-shaped token that matches no entity; the
	// learned sender pattern should still apply.
	comm := newComm(db, t, "<m7@x>", "kim@clientco.com", "about 99 BK-999", "")
	cand, err := Match(db, cfg, comm)
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if cand == nil || cand.Method != models.MethodLearnedSender {
		t.Errorf("candidate = %+v, want learned sender fallback", cand)
	}
}
