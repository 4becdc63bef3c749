package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ian.app/engine/internal/model"
)

const (
	jobsDirName       = "jobs"
	outputsDirName    = "outputs"
	referencesDirName = "references"
	trashDirName      = ".trash"
	jobFileName       = "job.json"
	referencesFile    = "files.json"
)

// jobMetadata is the persisted shape of job.json: every Job field except the
// live outputs map, plus the names of the output files that exist on disk.
type jobMetadata struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	ReferenceFolders []string                `json:"referenceFolders"`
	Status           model.JobStatus         `json:"status"`
	Version          int                     `json:"version"`
	CurrentStep      string                  `json:"currentStep,omitempty"`
	OutputFiles      []string                `json:"outputFiles"`
	Changelog        string                  `json:"changelog,omitempty"`
	VersionHistory   []model.VersionSnapshot `json:"versionHistory,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

// DirectoryStore persists each job as a directory tree under a user-selected
// root:
//
//	jobs/<id>/job.json
//	jobs/<id>/outputs/<outputFile>
//	jobs/<id>/references/files.json
//	.trash/<id>_<timestamp>/...
//
// Metadata and output files are separate writes with no atomic commit; a
// crash between them is tolerated on load (missing outputs are skipped,
// orphaned outputs are harmless).
type DirectoryStore struct {
	root string
}

func NewDirectoryStore(root string) (*DirectoryStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	s := &DirectoryStore{root: root}
	if err := s.ensureRootMeta(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the storage root path.
func (s *DirectoryStore) Root() string {
	return s.root
}

func (s *DirectoryStore) Save(ctx context.Context, job *model.Job) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	jobDir := filepath.Join(s.root, jobsDirName, job.ID)
	outputsDir := filepath.Join(jobDir, outputsDirName)
	referencesDir := filepath.Join(jobDir, referencesDirName)

	for _, dir := range []string{outputsDir, referencesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating job directory: %w", err)
		}
	}

	// Empty-string outputs are dropped before writing. A step that produced
	// an empty result is indistinguishable on disk from one that never ran.
	outputs := make(map[string]string, len(job.Outputs))
	for name, content := range job.Outputs {
		if content != "" {
			outputs[name] = content
		}
	}

	outputFiles := make([]string, 0, len(outputs))
	for name := range outputs {
		outputFiles = append(outputFiles, name)
	}
	sort.Strings(outputFiles)

	meta := jobMetadata{
		ID:               job.ID,
		Title:            job.Title,
		Description:      job.Description,
		ReferenceFolders: job.ReferenceFolders,
		Status:           job.Status,
		Version:          job.Version,
		CurrentStep:      job.CurrentStep,
		OutputFiles:      outputFiles,
		Changelog:        job.Changelog,
		VersionHistory:   job.VersionHistory,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}

	if err := writeJSON(filepath.Join(jobDir, jobFileName), meta); err != nil {
		return fmt.Errorf("writing job metadata: %w", err)
	}

	// Output files for one job are independent; write them as a concurrent
	// batch with no ordering guarantee among them.
	g, _ := errgroup.WithContext(ctx)
	for _, name := range outputFiles {
		g.Go(func() error {
			path := filepath.Join(outputsDir, name)
			if err := os.WriteFile(path, []byte(outputs[name]), 0o644); err != nil {
				return fmt.Errorf("writing output %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(referencesDir, referencesFile), job.ReferenceFiles); err != nil {
		return fmt.Errorf("writing reference files: %w", err)
	}

	return nil
}

func (s *DirectoryStore) Load(ctx context.Context, id string) (*model.Job, error) {
	jobDir := filepath.Join(s.root, jobsDirName, id)

	data, err := os.ReadFile(filepath.Join(jobDir, jobFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading job metadata: %w", err)
	}

	var meta jobMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing job metadata: %w", err)
	}

	job := &model.Job{
		ID:               meta.ID,
		Title:            meta.Title,
		Description:      meta.Description,
		ReferenceFolders: meta.ReferenceFolders,
		Status:           meta.Status,
		Version:          meta.Version,
		CurrentStep:      meta.CurrentStep,
		Outputs:          make(map[string]string, len(meta.OutputFiles)),
		Changelog:        meta.Changelog,
		VersionHistory:   meta.VersionHistory,
		CreatedAt:        meta.CreatedAt,
		UpdatedAt:        meta.UpdatedAt,
	}

	// A listed-but-missing output file is skipped, not an error: metadata and
	// outputs are written without a shared transaction.
	for _, name := range meta.OutputFiles {
		content, err := os.ReadFile(filepath.Join(jobDir, outputsDirName, name))
		if err != nil {
			if os.IsNotExist(err) {
				slog.DebugContext(ctx, "listed output file missing, skipping", "job_id", id, "output", name)
				continue
			}
			return nil, fmt.Errorf("reading output %s: %w", name, err)
		}
		job.Outputs[name] = string(content)
	}

	// Corrupt or missing reference data degrades to no references.
	refData, err := os.ReadFile(filepath.Join(jobDir, referencesDirName, referencesFile))
	if err == nil {
		var refs []model.ReferenceFile
		if err := json.Unmarshal(refData, &refs); err == nil {
			job.ReferenceFiles = refs
		} else {
			slog.WarnContext(ctx, "corrupt reference data, ignoring", "job_id", id, "error", err)
		}
	}

	return job, nil
}

func (s *DirectoryStore) LoadAll(ctx context.Context) ([]model.Job, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, jobsDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Job{}, nil
		}
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	var (
		mu   sync.Mutex
		jobs []model.Job
	)

	// One concurrent load per job; no cross-job ordering guarantee until the
	// final sort.
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		g.Go(func() error {
			job, err := s.Load(gctx, entry.Name())
			if err != nil {
				if err == ErrNotFound {
					return nil
				}
				return err
			}
			mu.Lock()
			jobs = append(jobs, *job)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

// SoftDelete copies the job's entire directory tree into the trash area under
// "<id>_<timestamp>", then removes the original. The timestamp disambiguates
// repeated trashings of the same id.
func (s *DirectoryStore) SoftDelete(ctx context.Context, id string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	jobDir := filepath.Join(s.root, jobsDirName, id)
	if _, err := os.Stat(jobDir); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("checking job directory: %w", err)
	}

	trashName := fmt.Sprintf("%s_%d", id, time.Now().UnixMilli())
	trashDir := filepath.Join(s.root, trashDirName, trashName)

	if err := copyTree(jobDir, trashDir); err != nil {
		return fmt.Errorf("copying job to trash: %w", err)
	}

	if err := os.RemoveAll(jobDir); err != nil {
		return fmt.Errorf("removing job directory: %w", err)
	}

	slog.InfoContext(ctx, "job moved to trash", "job_id", id, "trash_entry", trashName)
	return nil
}

func (s *DirectoryStore) ListTrash(ctx context.Context) ([]TrashEntry, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, trashDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return []TrashEntry{}, nil
		}
		return nil, fmt.Errorf("listing trash: %w", err)
	}

	trash := make([]TrashEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		jobID, deletedAt, ok := parseTrashName(entry.Name())
		if !ok {
			continue
		}
		trash = append(trash, TrashEntry{
			ID:        entry.Name(),
			JobID:     jobID,
			DeletedAt: deletedAt,
		})
	}

	sort.Slice(trash, func(i, j int) bool {
		return trash[i].DeletedAt.After(trash[j].DeletedAt)
	})

	return trash, nil
}

// Restore copies a trash entry back under its original job id and removes the
// entry.
func (s *DirectoryStore) Restore(ctx context.Context, trashID string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	jobID, _, ok := parseTrashName(trashID)
	if !ok {
		return fmt.Errorf("malformed trash entry name %q", trashID)
	}

	trashDir := filepath.Join(s.root, trashDirName, trashID)
	if _, err := os.Stat(trashDir); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("checking trash entry: %w", err)
	}

	jobDir := filepath.Join(s.root, jobsDirName, jobID)
	if err := copyTree(trashDir, jobDir); err != nil {
		return fmt.Errorf("restoring job from trash: %w", err)
	}

	if err := os.RemoveAll(trashDir); err != nil {
		return fmt.Errorf("removing trash entry: %w", err)
	}

	slog.InfoContext(ctx, "job restored from trash", "job_id", jobID, "trash_entry", trashID)
	return nil
}

// Purge permanently removes a trash entry.
func (s *DirectoryStore) Purge(ctx context.Context, trashID string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	trashDir := filepath.Join(s.root, trashDirName, trashID)
	if _, err := os.Stat(trashDir); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("checking trash entry: %w", err)
	}

	if err := os.RemoveAll(trashDir); err != nil {
		return fmt.Errorf("purging trash entry: %w", err)
	}

	slog.InfoContext(ctx, "trash entry purged", "trash_entry", trashID)
	return nil
}

// checkWritable verifies the storage root still exists and accepts writes.
// The root is user-selected and can disappear or lose permissions between
// operations, so every mutating batch re-validates before touching anything.
func (s *DirectoryStore) checkWritable() error {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, s.root)
	}

	probe, err := os.CreateTemp(s.root, ".write-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, s.root)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// parseTrashName splits "<jobID>_<unix-milli>" on the last underscore.
func parseTrashName(name string) (jobID string, deletedAt time.Time, ok bool) {
	idx := strings.LastIndex(name, "_")
	if idx <= 0 || idx == len(name)-1 {
		return "", time.Time{}, false
	}

	ms, err := strconv.ParseInt(name[idx+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}

	return name[:idx], time.UnixMilli(ms).UTC(), true
}

func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", srcPath, err)
		}
		if err := os.WriteFile(dstPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dstPath, err)
		}
	}

	return nil
}

// writeJSON writes a value atomically: temp file then rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
