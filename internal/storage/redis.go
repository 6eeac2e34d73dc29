package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

// RedisStore keeps projects, chapters and frames in Redis.
//
// Layout, under the configured key prefix:
//
//	projects                   list of project ids in creation order
//	project:name:<name>        project id by lower-cased name
//	project:<id>               hash {name}
//	<id>:res:<rtype>           list of resource names
//	<id>:resset:<rtype>        set of the same names, guards uniqueness
//	<id>:chapters              list of chapter names
//	<id>:chapterset            set of the same names, guards uniqueness
//	<id>:chapter:<name>        list of frame ids
//	<id>:frame:<fid>           hash {name, chapter, detail}
//	<id>:next_fid              frame id counter
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ interfaces.StoryStore = (*RedisStore)(nil)

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

func (s *RedisStore) key(parts ...string) string {
	if s.prefix == "" {
		return strings.Join(parts, ":")
	}
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStore) projectKey(id models.ProjectID) string {
	return s.key("project", string(id))
}

func (s *RedisStore) chaptersKey(id models.ProjectID) string {
	return s.key(string(id), "chapters")
}

func (s *RedisStore) chapterSetKey(id models.ProjectID) string {
	return s.key(string(id), "chapterset")
}

func (s *RedisStore) chapterKey(id models.ProjectID, chapter string) string {
	return s.key(string(id), "chapter", chapter)
}

func (s *RedisStore) frameKey(id models.ProjectID, fid models.FrameID) string {
	return s.key(string(id), "frame", fid.String())
}

func (s *RedisStore) resourceKey(id models.ProjectID, rtype models.ResourceType) string {
	return s.key(string(id), "res", string(rtype))
}

func (s *RedisStore) resourceSetKey(id models.ProjectID, rtype models.ResourceType) string {
	return s.key(string(id), "resset", string(rtype))
}

func (s *RedisStore) requireProject(ctx context.Context, id models.ProjectID) error {
	n, err := s.client.Exists(ctx, s.projectKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return nil
}

func (s *RedisStore) InitProject(ctx context.Context, name string) (models.ProjectID, error) {
	name = projectKey(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty project name", ErrInvalidName)
	}

	nameKey := s.key("project", "name", name)
	id := newProjectID()
	created, err := s.client.SetNX(ctx, nameKey, string(id), 0).Result()
	if err != nil {
		return "", fmt.Errorf("failed to reserve project name: %w", err)
	}
	if !created {
		existing, err := s.client.Get(ctx, nameKey).Result()
		if err != nil {
			return "", fmt.Errorf("failed to read project id: %w", err)
		}
		return models.ProjectID(existing), nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.projectKey(id), "name", name)
		pipe.RPush(ctx, s.key("projects"), string(id))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store project: %w", err)
	}
	return id, nil
}

func (s *RedisStore) ListProjects(ctx context.Context) ([]string, error) {
	ids, err := s.client.LRange(ctx, s.key("projects"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := s.client.HGet(ctx, s.projectKey(models.ProjectID(id)), "name").Result()
		if errors.Is(err, redis.Nil) {
			continue // removed concurrently
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read project %s: %w", id, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *RedisStore) ProjectName(ctx context.Context, id models.ProjectID) (string, error) {
	name, err := s.client.HGet(ctx, s.projectKey(id), "name").Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read project %s: %w", id, err)
	}
	return name, nil
}

func (s *RedisStore) RemoveProject(ctx context.Context, name string) (models.ProjectID, error) {
	name = projectKey(name)
	nameKey := s.key("project", "name", name)

	raw, err := s.client.Get(ctx, nameKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read project id: %w", err)
	}
	id := models.ProjectID(raw)

	chapters, err := s.client.LRange(ctx, s.chaptersKey(id), 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to list chapters: %w", err)
	}

	keys := []string{nameKey, s.projectKey(id), s.chaptersKey(id), s.chapterSetKey(id), s.key(string(id), "next_fid")}
	for _, rtype := range models.ResourceTypes {
		keys = append(keys, s.resourceKey(id, rtype), s.resourceSetKey(id, rtype))
	}
	for _, chapter := range chapters {
		frameKeys, err := s.chapterFrameKeys(ctx, id, chapter)
		if err != nil {
			return "", err
		}
		keys = append(keys, s.chapterKey(id, chapter))
		keys = append(keys, frameKeys...)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.LRem(ctx, s.key("projects"), 0, string(id))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to remove project: %w", err)
	}
	return id, nil
}

func (s *RedisStore) ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error) {
	if err := s.requireProject(ctx, id); err != nil {
		return nil, err
	}
	names, err := s.client.LRange(ctx, s.resourceKey(id, rtype), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return names, nil
}

func (s *RedisStore) AddResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}
	if err := s.requireProject(ctx, id); err != nil {
		return err
	}
	// SADD decides which of two concurrent uploads appends the name
	added, err := s.client.SAdd(ctx, s.resourceSetKey(id, rtype), name).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve resource name: %w", err)
	}
	if added == 0 {
		return nil
	}
	if err := s.client.RPush(ctx, s.resourceKey(id, rtype), name).Err(); err != nil {
		s.client.SRem(ctx, s.resourceSetKey(id, rtype), name)
		return fmt.Errorf("failed to store resource: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	if err := s.requireProject(ctx, id); err != nil {
		return err
	}
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.LRem(ctx, s.resourceKey(id, rtype), 1, name)
		pipe.SRem(ctx, s.resourceSetKey(id, rtype), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove resource: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, name)
	}
	return nil
}

func (s *RedisStore) RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}
	names, err := s.ListResources(ctx, id, rtype)
	if err != nil {
		return err
	}
	i := indexOf(names, oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, oldName)
	}
	if oldName == newName {
		return nil
	}
	added, err := s.client.SAdd(ctx, s.resourceSetKey(id, rtype), newName).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve resource name: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceExists, rtype, newName)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LSet(ctx, s.resourceKey(id, rtype), int64(i), newName)
		pipe.SRem(ctx, s.resourceSetKey(id, rtype), oldName)
		return nil
	})
	if err != nil {
		s.client.SRem(ctx, s.resourceSetKey(id, rtype), newName)
		return fmt.Errorf("failed to rename resource: %w", err)
	}
	return nil
}

func (s *RedisStore) ListChapters(ctx context.Context, id models.ProjectID) ([]string, error) {
	if err := s.requireProject(ctx, id); err != nil {
		return nil, err
	}
	names, err := s.client.LRange(ctx, s.chaptersKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return names, nil
}

func (s *RedisStore) hasChapter(ctx context.Context, id models.ProjectID, chapter string) (bool, error) {
	if err := s.requireProject(ctx, id); err != nil {
		return false, err
	}
	ok, err := s.client.SIsMember(ctx, s.chapterSetKey(id), chapter).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check chapter: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) AddChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	if chapter == "" {
		return fmt.Errorf("%w: empty chapter name", ErrInvalidName)
	}
	if err := s.requireProject(ctx, id); err != nil {
		return err
	}
	added, err := s.client.SAdd(ctx, s.chapterSetKey(id), chapter).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve chapter name: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", ErrChapterExists, chapter)
	}
	if err := s.client.RPush(ctx, s.chaptersKey(id), chapter).Err(); err != nil {
		s.client.SRem(ctx, s.chapterSetKey(id), chapter)
		return fmt.Errorf("failed to store chapter: %w", err)
	}
	return nil
}

func (s *RedisStore) chapterFrameKeys(ctx context.Context, id models.ProjectID, chapter string) ([]string, error) {
	fids, err := s.client.LRange(ctx, s.chapterKey(id, chapter), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	keys := make([]string, 0, len(fids))
	for _, fid := range fids {
		keys = append(keys, s.key(string(id), "frame", fid))
	}
	return keys, nil
}

func (s *RedisStore) RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	exists, err := s.hasChapter(ctx, id, chapter)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}

	keys, err := s.chapterFrameKeys(ctx, id, chapter)
	if err != nil {
		return err
	}
	keys = append(keys, s.chapterKey(id, chapter))

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.LRem(ctx, s.chaptersKey(id), 1, chapter)
		pipe.SRem(ctx, s.chapterSetKey(id), chapter)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove chapter: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (models.FrameID, error) {
	if frameName == "" {
		return models.NoFrame, fmt.Errorf("%w: empty frame name", ErrInvalidName)
	}
	exists, err := s.hasChapter(ctx, id, chapter)
	if err != nil {
		return models.NoFrame, err
	}
	if !exists {
		return models.NoFrame, fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}

	n, err := s.client.Incr(ctx, s.key(string(id), "next_fid")).Result()
	if err != nil {
		return models.NoFrame, fmt.Errorf("failed to allocate frame id: %w", err)
	}
	fid := models.FrameID(n - 1)

	detail := models.NewFrameDetail()
	detail.Name = frameName
	data, err := json.Marshal(detail)
	if err != nil {
		return models.NoFrame, fmt.Errorf("failed to marshal frame: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.frameKey(id, fid), "name", frameName, "chapter", chapter, "detail", string(data))
		pipe.RPush(ctx, s.chapterKey(id, chapter), fid.String())
		return nil
	})
	if err != nil {
		return models.NoFrame, fmt.Errorf("failed to store frame: %w", err)
	}
	return fid, nil
}

func (s *RedisStore) ListFrames(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error) {
	exists, err := s.hasChapter(ctx, id, chapter)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}

	fids, err := s.client.LRange(ctx, s.chapterKey(id, chapter), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	entries := make([]models.FrameListEntry, 0, len(fids))
	for _, raw := range fids {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue // Skip invalid entries
		}
		fid := models.FrameID(n)
		name, err := s.client.HGet(ctx, s.frameKey(id, fid), "name").Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %d: %w", fid, err)
		}
		entries = append(entries, models.FrameListEntry{
			FrameName:   name,
			ChapterName: chapter,
			ProjectID:   id,
			ID:          fid,
		})
	}
	return entries, nil
}

func (s *RedisStore) GetFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (models.FrameDetail, error) {
	if err := s.requireProject(ctx, id); err != nil {
		return models.FrameDetail{}, err
	}

	data, err := s.client.HGet(ctx, s.frameKey(id, fid), "detail").Result()
	if errors.Is(err, redis.Nil) {
		return models.FrameDetail{}, fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if err != nil {
		return models.FrameDetail{}, fmt.Errorf("failed to read frame: %w", err)
	}

	detail := models.NewFrameDetail()
	if err := json.Unmarshal([]byte(data), &detail); err != nil {
		return models.FrameDetail{}, fmt.Errorf("failed to unmarshal frame: %w", err)
	}
	return detail, nil
}

func (s *RedisStore) ModifyFrame(ctx context.Context, id models.ProjectID, fid models.FrameID, detail models.FrameDetail) error {
	if err := s.requireProject(ctx, id); err != nil {
		return err
	}

	name, err := s.client.HGet(ctx, s.frameKey(id, fid), "name").Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}
	if detail.Name == "" {
		detail.Name = name
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if err := s.client.HSet(ctx, s.frameKey(id, fid), "name", detail.Name, "detail", string(data)).Err(); err != nil {
		return fmt.Errorf("failed to store frame: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) error {
	if err := s.requireProject(ctx, id); err != nil {
		return err
	}

	chapter, err := s.client.HGet(ctx, s.frameKey(id, fid), "chapter").Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, s.chapterKey(id, chapter), 1, fid.String())
		pipe.Del(ctx, s.frameKey(id, fid))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove frame: %w", err)
	}
	return nil
}
