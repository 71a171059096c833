package database

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
)

func NewJobRepository(storage storage.FileStorage) JobRepository {
	return &fileJobRepository{jobFiles{storage: storage}}
}

func (r *fileJobRepository) Save(job *entity.RenderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return r.storage.Save(r.getJobMetadataPath(job.ID), bytes.NewReader(data))
}

func (r *fileJobRepository) FindByID(id string) (*entity.RenderJob, error) {
	reader, err := r.storage.Get(r.getJobMetadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrJobNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var job entity.RenderJob
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *fileJobRepository) Delete(id string) error {
	metadataPath := r.getJobMetadataPath(id)
	if err := r.storage.Delete(metadataPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return r.deleteFiles(id)
}

// ListIDs returns every id that has an original or a metadata file.
func (r *fileJobRepository) ListIDs() ([]string, error) {
	ids, err := r.jobFiles.ListIDs()
	if err != nil {
		return nil, err
	}
	names, err := r.storage.List(storage.MetadataDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(ids)+len(names))
	for _, id := range ids {
		seen[id] = true
	}
	for _, name := range names {
		id, ok := strings.CutSuffix(name, ".json")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fileJobRepository) getJobMetadataPath(id string) string {
	return filepath.Join(storage.MetadataDir, id+".json")
}
