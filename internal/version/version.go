package version

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ian.app/engine/common/llm"
	"ian.app/engine/common/logger"
	"ian.app/engine/internal/model"
	"ian.app/engine/internal/pipeline"
	"ian.app/engine/internal/store"
	"ian.app/engine/internal/template"
)

const (
	// InitialVersionChangelog is returned without invoking the AI collaborator.
	InitialVersionChangelog = "Initial version - no previous changes to compare."

	// ChangelogUnavailable is the local fallback when changelog generation
	// fails. Changelog is informational, so the failure never propagates.
	ChangelogUnavailable = "Unable to generate changelog at this time."

	// excerptCap bounds per-document excerpts in the changelog prompt.
	excerptCap = 1500

	// summaryCap bounds the one-line changelog summary. Truncation backs up
	// to a rune boundary so the summary stays valid UTF-8.
	summaryCap = 100
)

// comparedOutputs are the four key documents diffed between versions.
var comparedOutputs = []string{
	pipeline.OutputTechLead,
	pipeline.OutputBusinessAnalyst,
	pipeline.OutputRequirements,
	pipeline.OutputProductBacklog,
}

// Service creates version snapshots and AI-generated changelogs.
type Service struct {
	llm      llm.Client
	registry *template.Registry
	settings store.SettingsStore
}

func NewService(llmClient llm.Client, registry *template.Registry, settings store.SettingsStore) *Service {
	return &Service{llm: llmClient, registry: registry, settings: settings}
}

// CreateVersion freezes the job's current state into a snapshot, bumps the
// version and prepares the job for a fresh run. The new version is not run
// here; the orchestrator must be invoked separately.
func (s *Service) CreateVersion(job *model.Job, changeReason string, newFolders []string, newFiles []model.ReferenceFile) {
	snapshot := model.VersionSnapshot{
		Version:          job.Version,
		CreatedAt:        time.Now().UTC(),
		Description:      job.Description,
		ChangeReason:     changeReason,
		Changelog:        job.Changelog,
		Status:           job.Status,
		ReferenceFolders: append([]string(nil), job.ReferenceFolders...),
		ReferenceFiles:   append([]model.ReferenceFile(nil), job.ReferenceFiles...),
		Outputs:          copyOutputs(job.Outputs),
	}

	job.VersionHistory = append(job.VersionHistory, snapshot)
	job.Version++
	job.ReferenceFolders = append(job.ReferenceFolders, newFolders...)
	job.ReferenceFiles = append(job.ReferenceFiles, newFiles...)

	if changeReason != "" {
		job.Description = fmt.Sprintf("%s\n\n--- Version %d update ---\n%s",
			job.Description, job.Version, changeReason)
	}

	job.Outputs = map[string]string{}
	job.Changelog = ""
	job.Status = model.JobStatusNew
	job.CurrentStep = ""
	job.UpdatedAt = time.Now().UTC()
}

// GenerateChangelog produces a markdown summary of differences between the
// previous snapshot and the current job. The first revision (no previous
// snapshot, or the previous snapshot is version 1) gets the initial literal
// without a model call. Never returns an error: generation failure degrades
// to ChangelogUnavailable.
func (s *Service) GenerateChangelog(ctx context.Context, prev *model.VersionSnapshot, job *model.Job) string {
	if prev == nil || prev.Version == 1 || job.Version == 1 {
		return InitialVersionChangelog
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "ian.version.changelog",
		JobID:     logger.Ptr(job.ID),
		Version:   logger.Ptr(job.Version),
	})

	tmpl, err := s.registry.Get(ctx, pipeline.StepChangelogAgent)
	if err != nil {
		slog.ErrorContext(ctx, "changelog template missing", "error", err)
		return ChangelogUnavailable
	}

	changeReason := ""
	if len(job.VersionHistory) > 0 {
		changeReason = job.VersionHistory[len(job.VersionHistory)-1].ChangeReason
	}

	prompt := template.Fill(tmpl, map[string]string{
		"VERSION":           fmt.Sprintf("%d", job.Version),
		"CHANGE_REASON":     changeReason,
		"CHANGES_CONTENT":   buildChangesContent(prev, job),
		"REFERENCE_CHANGES": buildReferenceChanges(prev.ReferenceFolders, job.ReferenceFolders),
	})

	settings := store.ModelSettings(ctx, s.settings)
	changelog, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Model:       settings.Model,
		Temperature: settings.Temperature,
	})
	if err != nil {
		slog.WarnContext(ctx, "changelog generation failed", "error", err)
		return ChangelogUnavailable
	}

	return changelog
}

// buildChangesContent enumerates which of the four key documents changed,
// with bounded excerpts of both versions.
func buildChangesContent(prev *model.VersionSnapshot, job *model.Job) string {
	var b strings.Builder

	for _, file := range comparedOutputs {
		before := prev.Outputs[file]
		after := job.Outputs[file]
		if before == after {
			continue
		}

		fmt.Fprintf(&b, "## %s changed\n\n", file)
		fmt.Fprintf(&b, "Previous version (excerpt):\n%s\n\n", logger.Truncate(before, excerptCap))
		fmt.Fprintf(&b, "Current version (excerpt):\n%s\n\n", logger.Truncate(after, excerptCap))
	}

	if b.Len() == 0 {
		return "No differences detected in the key documents."
	}
	return b.String()
}

// buildReferenceChanges reports the set difference of reference folders in
// both directions.
func buildReferenceChanges(prev, cur []string) string {
	added := difference(cur, prev)
	removed := difference(prev, cur)

	if len(added) == 0 && len(removed) == 0 {
		return "No reference folder changes."
	}

	var b strings.Builder
	for _, f := range added {
		fmt.Fprintf(&b, "Added: %s\n", f)
	}
	for _, f := range removed {
		fmt.Fprintf(&b, "Removed: %s\n", f)
	}
	return b.String()
}

func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}

	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

var changelogHeading = regexp.MustCompile(`##\s*Version\s+\d+\s*-\s*(.+)`)

// ExtractChangelogSummary extracts a best-effort one-line summary: a
// "## Version N - <title>" heading if present, else the first non-empty
// non-heading line truncated to 100 characters, else "Changes made".
func ExtractChangelogSummary(changelog string) string {
	if m := changelogHeading.FindStringSubmatch(changelog); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(changelog, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(trimmed) > summaryCap {
			cut := summaryCap
			for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
				cut--
			}
			return trimmed[:cut]
		}
		return trimmed
	}

	return "Changes made"
}

func copyOutputs(outputs map[string]string) map[string]string {
	copied := make(map[string]string, len(outputs))
	for k, v := range outputs {
		copied[k] = v
	}
	return copied
}
