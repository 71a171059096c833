package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/captioner/internal/entity"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// redisJobRepository keeps job metadata in Redis with a TTL; image files stay
// in the file storage.
type redisJobRepository struct {
	jobFiles
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewRedisJobRepository(client *redis.Client, storage storage.FileStorage, ttl time.Duration) JobRepository {
	return &redisJobRepository{
		jobFiles: jobFiles{storage: storage},
		client:   client,
		ctx:      context.Background(),
		ttl:      ttl,
	}
}

func (r *redisJobRepository) Save(job *entity.RenderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, jobKey(job.ID), data, r.ttl).Err()
}

func (r *redisJobRepository) FindByID(id string) (*entity.RenderJob, error) {
	data, err := r.client.Get(r.ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrJobNotFound
		}
		return nil, err
	}

	var job entity.RenderJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *redisJobRepository) Delete(id string) error {
	if err := r.client.Del(r.ctx, jobKey(id)).Err(); err != nil {
		return err
	}
	return r.deleteFiles(id)
}

func jobKey(id string) string {
	return "job:" + id
}
