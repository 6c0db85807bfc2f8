package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by the engine's tests and by
// dry-run imports. Not safe for concurrent writers beyond its own mutex.
type MemoryStore struct {
	mu sync.Mutex

	nextID    int64
	tutorials map[int64]*Tutorial
	parts     map[int64]*Part
	chapters  map[int64]*Chapter
	extracts  map[int64]*Extract
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tutorials: make(map[int64]*Tutorial),
		parts:     make(map[int64]*Part),
		chapters:  make(map[int64]*Chapter),
		extracts:  make(map[int64]*Extract),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateTutorial(_ context.Context, t *Tutorial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tutorials[t.ID] = t
	return nil
}

func (s *MemoryStore) UpdateTutorial(_ context.Context, t *Tutorial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tutorials[t.ID]; !ok {
		return fmt.Errorf("tutorial %d not found", t.ID)
	}
	t.UpdatedAt = time.Now()
	s.tutorials[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTutorial(_ context.Context, id int64) (*Tutorial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tutorials[id]
	if !ok {
		return nil, fmt.Errorf("tutorial %d not found", id)
	}
	return t, nil
}

func (s *MemoryStore) DeleteTutorial(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tutorials, id)
	for pid, p := range s.parts {
		if p.TutorialID == id {
			s.deletePartLocked(pid)
		}
	}
	for cid, c := range s.chapters {
		if c.TutorialID != nil && *c.TutorialID == id {
			s.deleteChapterLocked(cid)
		}
	}
	return nil
}

func (s *MemoryStore) CreatePart(_ context.Context, p *Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.parts[p.ID] = p
	return nil
}

func (s *MemoryStore) UpdatePart(_ context.Context, p *Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[p.ID]; !ok {
		return fmt.Errorf("part %d not found", p.ID)
	}
	s.parts[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPart(_ context.Context, id int64) (*Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	if !ok {
		return nil, fmt.Errorf("part %d not found", id)
	}
	return p, nil
}

func (s *MemoryStore) DeletePart(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletePartLocked(id)
	return nil
}

func (s *MemoryStore) deletePartLocked(id int64) {
	delete(s.parts, id)
	for cid, c := range s.chapters {
		if c.PartID != nil && *c.PartID == id {
			s.deleteChapterLocked(cid)
		}
	}
}

func (s *MemoryStore) CreateChapter(_ context.Context, c *Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.chapters[c.ID] = c
	return nil
}

func (s *MemoryStore) UpdateChapter(_ context.Context, c *Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[c.ID]; !ok {
		return fmt.Errorf("chapter %d not found", c.ID)
	}
	s.chapters[c.ID] = c
	return nil
}

func (s *MemoryStore) GetChapter(_ context.Context, id int64) (*Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chapters[id]
	if !ok {
		return nil, fmt.Errorf("chapter %d not found", id)
	}
	return c, nil
}

func (s *MemoryStore) DeleteChapter(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteChapterLocked(id)
	return nil
}

func (s *MemoryStore) deleteChapterLocked(id int64) {
	delete(s.chapters, id)
	for eid, e := range s.extracts {
		if e.ChapterID == id {
			delete(s.extracts, eid)
		}
	}
}

func (s *MemoryStore) CreateExtract(_ context.Context, e *Extract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.extracts[e.ID] = e
	return nil
}

func (s *MemoryStore) UpdateExtract(_ context.Context, e *Extract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.extracts[e.ID]; !ok {
		return fmt.Errorf("extract %d not found", e.ID)
	}
	s.extracts[e.ID] = e
	return nil
}

func (s *MemoryStore) GetExtract(_ context.Context, id int64) (*Extract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.extracts[id]
	if !ok {
		return nil, fmt.Errorf("extract %d not found", id)
	}
	return e, nil
}

func (s *MemoryStore) DeleteExtract(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.extracts, id)
	return nil
}

func (s *MemoryStore) PartsOfTutorial(_ context.Context, tutorialID int64) ([]*Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Part
	for _, p := range s.parts {
		if p.TutorialID == tutorialID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionInTutorial < out[j].PositionInTutorial })
	return out, nil
}

func (s *MemoryStore) ChaptersOfPart(_ context.Context, partID int64) ([]*Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Chapter
	for _, c := range s.chapters {
		if c.PartID != nil && *c.PartID == partID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionInPart < out[j].PositionInPart })
	return out, nil
}

func (s *MemoryStore) ChaptersOfTutorial(_ context.Context, tutorialID int64) ([]*Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Chapter
	for _, c := range s.chapters {
		if c.TutorialID != nil && *c.TutorialID == tutorialID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionInTutorial < out[j].PositionInTutorial })
	return out, nil
}

func (s *MemoryStore) ExtractsOfChapter(_ context.Context, chapterID int64) ([]*Extract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Extract
	for _, e := range s.extracts {
		if e.ChapterID == chapterID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionInChapter < out[j].PositionInChapter })
	return out, nil
}
