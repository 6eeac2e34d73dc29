package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrChapterExists    = errors.New("chapter already exists")
	ErrFrameNotFound    = errors.New("frame not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrResourceExists   = errors.New("resource already exists")
	ErrInvalidName      = errors.New("invalid name")
)

// projectKey folds a project name the way the backend does: names are
// case-insensitive and stored lower-cased.
func projectKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func newProjectID() models.ProjectID {
	return models.ProjectID(uuid.NewString())
}

type memoryFrame struct {
	name    string
	chapter string
	detail  models.FrameDetail
}

type memoryChapter struct {
	name   string
	frames []models.FrameID
}

type memoryProject struct {
	id        models.ProjectID
	name      string
	resources map[models.ResourceType][]string
	chapters  []*memoryChapter
	frames    map[models.FrameID]*memoryFrame
	nextFrame models.FrameID
}

func (p *memoryProject) chapter(name string) (*memoryChapter, int) {
	for i, ch := range p.chapters {
		if ch.name == name {
			return ch, i
		}
	}
	return nil, -1
}

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[models.ProjectID]*memoryProject
	byName   map[string]models.ProjectID
	order    []models.ProjectID
}

var _ interfaces.StoryStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[models.ProjectID]*memoryProject),
		byName:   make(map[string]models.ProjectID),
	}
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) project(id models.ProjectID) (*memoryProject, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, nil
}

func (s *MemoryStore) InitProject(ctx context.Context, name string) (models.ProjectID, error) {
	key := projectKey(name)
	if key == "" {
		return "", fmt.Errorf("%w: empty project name", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[key]; ok {
		return id, nil
	}

	id := newProjectID()
	s.projects[id] = &memoryProject{
		id:        id,
		name:      key,
		resources: make(map[models.ResourceType][]string),
		frames:    make(map[models.FrameID]*memoryFrame),
	}
	s.byName[key] = id
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.order))
	for _, id := range s.order {
		names = append(names, s.projects[id].name)
	}
	return names, nil
}

func (s *MemoryStore) ProjectName(ctx context.Context, id models.ProjectID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.project(id)
	if err != nil {
		return "", err
	}
	return p.name, nil
}

func (s *MemoryStore) RemoveProject(ctx context.Context, name string) (models.ProjectID, error) {
	key := projectKey(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	delete(s.byName, key)
	delete(s.projects, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return id, nil
}

func (s *MemoryStore) ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.project(id)
	if err != nil {
		return nil, err
	}
	return append([]string{}, p.resources[rtype]...), nil
}

func (s *MemoryStore) AddResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	// re-uploading a file overwrites it
	if indexOf(p.resources[rtype], name) >= 0 {
		return nil
	}
	p.resources[rtype] = append(p.resources[rtype], name)
	return nil
}

func (s *MemoryStore) RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	i := indexOf(p.resources[rtype], name)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, name)
	}
	p.resources[rtype] = append(p.resources[rtype][:i], p.resources[rtype][i+1:]...)
	return nil
}

func (s *MemoryStore) RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: empty resource name", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	list := p.resources[rtype]
	i := indexOf(list, oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceNotFound, rtype, oldName)
	}
	if oldName != newName && indexOf(list, newName) >= 0 {
		return fmt.Errorf("%w: %s/%s", ErrResourceExists, rtype, newName)
	}
	list[i] = newName
	return nil
}

func (s *MemoryStore) ListChapters(ctx context.Context, id models.ProjectID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.project(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(p.chapters))
	for _, ch := range p.chapters {
		names = append(names, ch.name)
	}
	return names, nil
}

func (s *MemoryStore) AddChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	if chapter == "" {
		return fmt.Errorf("%w: empty chapter name", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	if ch, _ := p.chapter(chapter); ch != nil {
		return fmt.Errorf("%w: %s", ErrChapterExists, chapter)
	}
	p.chapters = append(p.chapters, &memoryChapter{name: chapter})
	return nil
}

func (s *MemoryStore) RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	ch, i := p.chapter(chapter)
	if ch == nil {
		return fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}
	for _, fid := range ch.frames {
		delete(p.frames, fid)
	}
	p.chapters = append(p.chapters[:i], p.chapters[i+1:]...)
	return nil
}

func (s *MemoryStore) AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (models.FrameID, error) {
	if frameName == "" {
		return models.NoFrame, fmt.Errorf("%w: empty frame name", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return models.NoFrame, err
	}
	ch, _ := p.chapter(chapter)
	if ch == nil {
		return models.NoFrame, fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}

	fid := p.nextFrame
	p.nextFrame++

	detail := models.NewFrameDetail()
	detail.Name = frameName
	p.frames[fid] = &memoryFrame{name: frameName, chapter: chapter, detail: detail}
	ch.frames = append(ch.frames, fid)
	return fid, nil
}

func (s *MemoryStore) ListFrames(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.project(id)
	if err != nil {
		return nil, err
	}
	ch, _ := p.chapter(chapter)
	if ch == nil {
		return nil, fmt.Errorf("%w: %s", ErrChapterNotFound, chapter)
	}

	entries := make([]models.FrameListEntry, 0, len(ch.frames))
	for _, fid := range ch.frames {
		entries = append(entries, models.FrameListEntry{
			FrameName:   p.frames[fid].name,
			ChapterName: chapter,
			ProjectID:   id,
			ID:          fid,
		})
	}
	return entries, nil
}

func (s *MemoryStore) GetFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (models.FrameDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.project(id)
	if err != nil {
		return models.FrameDetail{}, err
	}
	f, ok := p.frames[fid]
	if !ok {
		return models.FrameDetail{}, fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	return f.detail.Clone(), nil
}

func (s *MemoryStore) ModifyFrame(ctx context.Context, id models.ProjectID, fid models.FrameID, detail models.FrameDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	f, ok := p.frames[fid]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if detail.Name != "" {
		f.name = detail.Name
	} else {
		detail.Name = f.name
	}
	f.detail = detail.Clone()
	return nil
}

func (s *MemoryStore) RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(id)
	if err != nil {
		return err
	}
	f, ok := p.frames[fid]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFrameNotFound, fid)
	}
	if ch, _ := p.chapter(f.chapter); ch != nil {
		for i, v := range ch.frames {
			if v == fid {
				ch.frames = append(ch.frames[:i], ch.frames[i+1:]...)
				break
			}
		}
	}
	delete(p.frames, fid)
	return nil
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
