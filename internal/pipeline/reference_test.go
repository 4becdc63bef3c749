package pipeline

import (
	"strings"
	"testing"

	"ian.app/engine/internal/model"
)

func TestBuildReferenceContentEmpty(t *testing.T) {
	job := &model.Job{Version: 1}
	if got := BuildReferenceContent(job); got != NoReferenceMaterials {
		t.Errorf("BuildReferenceContent() = %q, want %q", got, NoReferenceMaterials)
	}
}

func TestBuildReferenceContentFiles(t *testing.T) {
	job := &model.Job{
		Version: 1,
		ReferenceFiles: []model.ReferenceFile{
			{Name: "api.md", Path: "docs/api.md", Content: "api contract"},
			{Name: "notes.txt", Path: "notes.txt", Content: "meeting notes"},
		},
		// Folders are ignored when files are present.
		ReferenceFolders: []string{"/ignored"},
	}

	got := BuildReferenceContent(job)

	if !strings.Contains(got, "=== NEW REFERENCE MATERIALS ===") {
		t.Error("missing materials header")
	}
	if !strings.Contains(got, "File: docs/api.md") || !strings.Contains(got, "api contract") {
		t.Error("missing first file block")
	}
	if !strings.Contains(got, "--- END OF notes.txt ---") {
		t.Error("missing end marker for second file")
	}
	if strings.Contains(got, "/ignored") {
		t.Error("folders should not appear when files are present")
	}
}

func TestBuildReferenceContentFoldersFallback(t *testing.T) {
	job := &model.Job{
		Version:          1,
		ReferenceFolders: []string{"/work/specs", "/work/designs"},
	}

	got := BuildReferenceContent(job)

	if !strings.Contains(got, "Reference folder 1: /work/specs") {
		t.Errorf("missing first folder line in %q", got)
	}
	if !strings.Contains(got, "Reference folder 2: /work/designs") {
		t.Errorf("missing second folder line in %q", got)
	}
}

func TestBuildReferenceContentPreviousVersionFirst(t *testing.T) {
	job := &model.Job{
		Version: 2,
		VersionHistory: []model.VersionSnapshot{
			{
				Version: 1,
				Outputs: map[string]string{
					OutputBusinessAnalyst: "old business analysis",
					OutputTechLead:        "old tech analysis",
				},
			},
		},
		ReferenceFiles: []model.ReferenceFile{
			{Name: "new.md", Path: "new.md", Content: "new material"},
		},
	}

	got := BuildReferenceContent(job)

	if !strings.Contains(got, "=== PREVIOUS VERSION ANALYSIS (version 1) ===") {
		t.Fatal("missing previous version header")
	}
	if !strings.Contains(got, "--- BEGIN "+OutputTechLead+" ---") ||
		!strings.Contains(got, "--- END "+OutputTechLead+" ---") {
		t.Error("missing begin/end markers for tech lead document")
	}

	// History must precede new materials.
	prevIdx := strings.Index(got, "=== PREVIOUS VERSION ANALYSIS")
	newIdx := strings.Index(got, "=== NEW REFERENCE MATERIALS ===")
	if newIdx < prevIdx {
		t.Error("new reference materials appeared before previous version block")
	}

	// Output files are emitted in sorted (ordinal) order.
	techIdx := strings.Index(got, "--- BEGIN "+OutputTechLead)
	baIdx := strings.Index(got, "--- BEGIN "+OutputBusinessAnalyst)
	if baIdx < techIdx {
		t.Error("outputs not emitted in filename order")
	}
}

func TestBuildReferenceContentVersionOneIgnoresHistory(t *testing.T) {
	// Version 1 never has a usable previous version even if history is present.
	job := &model.Job{
		Version:        1,
		VersionHistory: []model.VersionSnapshot{{Version: 1, Outputs: map[string]string{OutputTechLead: "x"}}},
	}

	if got := BuildReferenceContent(job); got != NoReferenceMaterials {
		t.Errorf("BuildReferenceContent() = %q, want %q", got, NoReferenceMaterials)
	}
}
