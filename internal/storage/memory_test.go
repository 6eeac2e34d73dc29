package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) interfaces.StoryStore {
		return NewMemoryStore()
	})
}

func TestMemoryStoreConcurrentAdds(t *testing.T) {
	runConcurrentAddContract(t, NewMemoryStore())
}

func TestMemoryStoreGetFrameReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.InitProject(ctx, "copies")
	s.AddChapter(ctx, id, "ch1")
	fid, _ := s.AppendFrame(ctx, id, "ch1", "f1")

	got, _ := s.GetFrame(ctx, id, fid)
	got.Character["intruder"] = models.Position{}

	again, _ := s.GetFrame(ctx, id, fid)
	if _, ok := again.Character["intruder"]; ok {
		t.Error("mutating a fetched frame leaked into the store")
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.InitProject(ctx, "parallel")
	s.AddChapter(ctx, id, "ch1")

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan models.FrameID, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fid, err := s.AppendFrame(ctx, id, "ch1", fmt.Sprintf("f%d", i))
			if err != nil {
				t.Errorf("AppendFrame: %v", err)
				return
			}
			ids <- fid
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[models.FrameID]bool)
	for fid := range ids {
		if seen[fid] {
			t.Fatalf("frame id %d handed out twice", fid)
		}
		seen[fid] = true
	}
	entries, _ := s.ListFrames(ctx, id, "ch1")
	if len(entries) != n {
		t.Errorf("ListFrames returned %d entries, want %d", len(entries), n)
	}
}

func TestMemoryStoreRejectsEmptyNames(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.InitProject(ctx, "  "); err == nil {
		t.Error("InitProject accepted a blank name")
	}
	id, _ := s.InitProject(ctx, "names")
	if err := s.AddChapter(ctx, id, ""); err == nil {
		t.Error("AddChapter accepted an empty name")
	}
	if err := s.AddResource(ctx, id, models.ResourceMusic, ""); err == nil {
		t.Error("AddResource accepted an empty name")
	}
}
