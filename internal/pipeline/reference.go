package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"ian.app/engine/internal/model"
)

// NoReferenceMaterials is substituted when a job has neither history nor
// reference material of any kind.
const NoReferenceMaterials = "No reference materials provided."

// BuildReferenceContent assembles the REFERENCE_CONTENT variable.
//
// Ordering and delimiters are load-bearing: templates instruct the model to
// treat the previous-version block as context to preserve and extend, and the
// new-materials block as fresh input. History always comes first.
func BuildReferenceContent(job *model.Job) string {
	var b strings.Builder

	if job.Version > 1 && len(job.VersionHistory) > 0 {
		prev := job.VersionHistory[len(job.VersionHistory)-1]
		writePreviousVersionBlock(&b, prev)
	}

	switch {
	case len(job.ReferenceFiles) > 0:
		writeReferenceFiles(&b, job.ReferenceFiles)
	case len(job.ReferenceFolders) > 0:
		writeReferenceFolders(&b, job.ReferenceFolders)
	}

	if b.Len() == 0 {
		return NoReferenceMaterials
	}
	return b.String()
}

func writePreviousVersionBlock(b *strings.Builder, prev model.VersionSnapshot) {
	fmt.Fprintf(b, "=== PREVIOUS VERSION ANALYSIS (version %d) ===\n", prev.Version)
	fmt.Fprintf(b, "The following documents were produced by the previous version of this task.\n\n")

	// Deterministic order: output filenames carry their ordinal prefix.
	files := make([]string, 0, len(prev.Outputs))
	for name := range prev.Outputs {
		files = append(files, name)
	}
	sort.Strings(files)

	for _, name := range files {
		fmt.Fprintf(b, "--- BEGIN %s ---\n", name)
		b.WriteString(prev.Outputs[name])
		fmt.Fprintf(b, "\n--- END %s ---\n\n", name)
	}

	fmt.Fprintf(b, "=== END PREVIOUS VERSION ANALYSIS ===\n\n")
}

func writeReferenceFiles(b *strings.Builder, files []model.ReferenceFile) {
	b.WriteString("=== NEW REFERENCE MATERIALS ===\n\n")
	for _, f := range files {
		fmt.Fprintf(b, "File: %s\n", f.Path)
		b.WriteString(f.Content)
		fmt.Fprintf(b, "\n--- END OF %s ---\n\n", f.Path)
	}
}

func writeReferenceFolders(b *strings.Builder, folders []string) {
	b.WriteString("=== NEW REFERENCE MATERIALS ===\n\n")
	for i, folder := range folders {
		fmt.Fprintf(b, "Reference folder %d: %s\n", i+1, folder)
	}
}
