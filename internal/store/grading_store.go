package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ian.app/engine/internal/model"
)

const (
	gradingDirName       = "grading-jobs"
	legacyGradingDirName = "grading"
)

// gradingLocations are the directory names probed for grading jobs, in
// priority order. The deprecated "grading" layout is read so jobs persisted
// by earlier releases are not lost; new writes always go to the first
// location, and on an id collision the first location wins.
var gradingLocations = []string{gradingDirName, legacyGradingDirName}

// DirectoryGradingStore persists each grading job as a single job.json under
// grading-jobs/<id>/.
type DirectoryGradingStore struct {
	root string
}

func NewDirectoryGradingStore(root string) (*DirectoryGradingStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}
	return &DirectoryGradingStore{root: root}, nil
}

func (s *DirectoryGradingStore) Save(ctx context.Context, job *model.GradingJob) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	jobDir := filepath.Join(s.root, gradingDirName, job.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("creating grading job directory: %w", err)
	}

	if err := writeJSON(filepath.Join(jobDir, jobFileName), job); err != nil {
		return fmt.Errorf("writing grading job: %w", err)
	}
	return nil
}

func (s *DirectoryGradingStore) Load(ctx context.Context, id string) (*model.GradingJob, error) {
	for _, location := range gradingLocations {
		job, err := s.loadFrom(location, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		return job, nil
	}
	return nil, ErrNotFound
}

func (s *DirectoryGradingStore) LoadAll(ctx context.Context) ([]model.GradingJob, error) {
	byID := make(map[string]model.GradingJob)

	for _, location := range gradingLocations {
		entries, err := os.ReadDir(filepath.Join(s.root, location))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("listing %s: %w", location, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, exists := byID[entry.Name()]; exists {
				continue // earlier location already supplied this id
			}
			job, err := s.loadFrom(location, entry.Name())
			if err != nil {
				if err == ErrNotFound {
					continue
				}
				return nil, err
			}
			byID[entry.Name()] = *job
		}
	}

	jobs := make([]model.GradingJob, 0, len(byID))
	for _, job := range byID {
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	return jobs, nil
}

// Delete soft-deletes a grading job into the shared trash area, wherever it
// currently lives.
func (s *DirectoryGradingStore) Delete(ctx context.Context, id string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	for _, location := range gradingLocations {
		jobDir := filepath.Join(s.root, location, id)
		if _, err := os.Stat(jobDir); err != nil {
			continue
		}

		trashName := fmt.Sprintf("%s_%d", id, time.Now().UnixMilli())
		trashDir := filepath.Join(s.root, trashDirName, trashName)
		if err := copyTree(jobDir, trashDir); err != nil {
			return fmt.Errorf("copying grading job to trash: %w", err)
		}
		if err := os.RemoveAll(jobDir); err != nil {
			return fmt.Errorf("removing grading job directory: %w", err)
		}
		return nil
	}

	return ErrNotFound
}

func (s *DirectoryGradingStore) loadFrom(location, id string) (*model.GradingJob, error) {
	data, err := os.ReadFile(filepath.Join(s.root, location, id, jobFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading grading job: %w", err)
	}

	var job model.GradingJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing grading job: %w", err)
	}
	return &job, nil
}

func (s *DirectoryGradingStore) checkWritable() error {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, s.root)
	}
	return nil
}
