package storage

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/atomic"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

// runStoreContract exercises the behaviour every StoryStore shares.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) interfaces.StoryStore) {
	t.Run("InitProjectIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.InitProject(ctx, "StoryA")
		if err != nil {
			t.Fatalf("InitProject: %v", err)
		}
		b, err := s.InitProject(ctx, "storya")
		if err != nil {
			t.Fatalf("InitProject again: %v", err)
		}
		if a == "" || a != b {
			t.Fatalf("ids = %q, %q; want the same non-empty id", a, b)
		}

		names, err := s.ListProjects(ctx)
		if err != nil {
			t.Fatalf("ListProjects: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"storya"}) {
			t.Errorf("ListProjects = %v", names)
		}
	})

	t.Run("RemoveProject", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, _ := s.InitProject(ctx, "gone-soon")
		if err := s.AddChapter(ctx, id, "ch1"); err != nil {
			t.Fatalf("AddChapter: %v", err)
		}
		name, err := s.ProjectName(ctx, id)
		if err != nil || name != "gone-soon" {
			t.Fatalf("ProjectName = %q, %v", name, err)
		}
		removed, err := s.RemoveProject(ctx, "GONE-SOON")
		if err != nil {
			t.Fatalf("RemoveProject: %v", err)
		}
		if removed != id {
			t.Errorf("RemoveProject returned %q, want %q", removed, id)
		}
		if _, err := s.ProjectName(ctx, id); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("ProjectName after remove: err = %v", err)
		}
		if _, err := s.ListChapters(ctx, id); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("ListChapters after remove: err = %v, want ErrProjectNotFound", err)
		}
		if _, err := s.RemoveProject(ctx, "gone-soon"); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("second RemoveProject: err = %v", err)
		}
	})

	t.Run("Resources", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.InitProject(ctx, "resources")

		for _, name := range []string{"hall.png", "street.png", "hall.png"} {
			if err := s.AddResource(ctx, id, models.ResourceBackground, name); err != nil {
				t.Fatalf("AddResource(%s): %v", name, err)
			}
		}
		got, _ := s.ListResources(ctx, id, models.ResourceBackground)
		if !reflect.DeepEqual(got, []string{"hall.png", "street.png"}) {
			t.Fatalf("ListResources = %v", got)
		}
		if music, _ := s.ListResources(ctx, id, models.ResourceMusic); len(music) != 0 {
			t.Errorf("music = %v, want empty", music)
		}

		if err := s.RenameResource(ctx, id, models.ResourceBackground, "hall.png", "street.png"); !errors.Is(err, ErrResourceExists) {
			t.Errorf("rename onto existing: err = %v", err)
		}
		if err := s.RenameResource(ctx, id, models.ResourceBackground, "hall.png", "lobby.png"); err != nil {
			t.Fatalf("RenameResource: %v", err)
		}
		if err := s.RemoveResource(ctx, id, models.ResourceBackground, "street.png"); err != nil {
			t.Fatalf("RemoveResource: %v", err)
		}
		if err := s.RemoveResource(ctx, id, models.ResourceBackground, "street.png"); !errors.Is(err, ErrResourceNotFound) {
			t.Errorf("second RemoveResource: err = %v", err)
		}

		got, _ = s.ListResources(ctx, id, models.ResourceBackground)
		if !reflect.DeepEqual(got, []string{"lobby.png"}) {
			t.Errorf("ListResources = %v", got)
		}
	})

	t.Run("Chapters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.InitProject(ctx, "chapters")

		for _, ch := range []string{"ch1", "ch2", "ch3"} {
			if err := s.AddChapter(ctx, id, ch); err != nil {
				t.Fatalf("AddChapter(%s): %v", ch, err)
			}
		}
		if err := s.AddChapter(ctx, id, "ch2"); !errors.Is(err, ErrChapterExists) {
			t.Errorf("duplicate AddChapter: err = %v", err)
		}
		if err := s.RemoveChapter(ctx, id, "ch2"); err != nil {
			t.Fatalf("RemoveChapter: %v", err)
		}
		if err := s.RemoveChapter(ctx, id, "ch2"); !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("second RemoveChapter: err = %v", err)
		}

		got, _ := s.ListChapters(ctx, id)
		if !reflect.DeepEqual(got, []string{"ch1", "ch3"}) {
			t.Errorf("ListChapters = %v", got)
		}
		if err := s.AddChapter(ctx, id, "ch2"); err != nil {
			t.Fatalf("re-adding a removed chapter: %v", err)
		}
		if got, _ := s.ListChapters(ctx, id); !reflect.DeepEqual(got, []string{"ch1", "ch3", "ch2"}) {
			t.Errorf("ListChapters after re-add = %v", got)
		}
		if _, err := s.ListChapters(ctx, "no-such-project"); !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("unknown project: err = %v", err)
		}
	})

	t.Run("Frames", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.InitProject(ctx, "frames")
		s.AddChapter(ctx, id, "ch1")
		s.AddChapter(ctx, id, "ch2")

		f1, err := s.AppendFrame(ctx, id, "ch1", "opening")
		if err != nil {
			t.Fatalf("AppendFrame: %v", err)
		}
		f2, _ := s.AppendFrame(ctx, id, "ch2", "meanwhile")
		f3, _ := s.AppendFrame(ctx, id, "ch1", "closing")
		if f1 != 0 || f2 != 1 || f3 != 2 {
			t.Fatalf("frame ids = %d, %d, %d; want 0, 1, 2", f1, f2, f3)
		}
		if _, err := s.AppendFrame(ctx, id, "missing", "x"); !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("AppendFrame to missing chapter: err = %v", err)
		}

		entries, err := s.ListFrames(ctx, id, "ch1")
		if err != nil {
			t.Fatalf("ListFrames: %v", err)
		}
		want := []models.FrameListEntry{
			{FrameName: "opening", ChapterName: "ch1", ProjectID: id, ID: f1},
			{FrameName: "closing", ChapterName: "ch1", ProjectID: id, ID: f3},
		}
		if !reflect.DeepEqual(entries, want) {
			t.Fatalf("ListFrames = %+v, want %+v", entries, want)
		}

		fresh, err := s.GetFrame(ctx, id, f1)
		if err != nil {
			t.Fatalf("GetFrame: %v", err)
		}
		if fresh.Name != "opening" || fresh.MusicSignal != models.MusicKeep {
			t.Errorf("fresh frame = %+v", fresh)
		}

		detail := models.NewFrameDetail()
		detail.Background = "hall.png"
		detail.Dialog = "Hello"
		detail.DialogCharacter = "Yui"
		detail.Character["Yui"] = models.Position{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.6}
		detail.MusicSignal = models.MusicPlay
		if err := s.ModifyFrame(ctx, id, f1, detail); err != nil {
			t.Fatalf("ModifyFrame: %v", err)
		}

		got, _ := s.GetFrame(ctx, id, f1)
		detail.Name = "opening"
		if !got.Equal(detail) {
			t.Errorf("GetFrame = %+v, want %+v", got, detail)
		}

		if err := s.RemoveFrame(ctx, id, f1); err != nil {
			t.Fatalf("RemoveFrame: %v", err)
		}
		if _, err := s.GetFrame(ctx, id, f1); !errors.Is(err, ErrFrameNotFound) {
			t.Errorf("GetFrame after remove: err = %v", err)
		}
		entries, _ = s.ListFrames(ctx, id, "ch1")
		if len(entries) != 1 || entries[0].ID != f3 {
			t.Errorf("ListFrames after remove = %+v", entries)
		}

		if err := s.RemoveChapter(ctx, id, "ch2"); err != nil {
			t.Fatalf("RemoveChapter: %v", err)
		}
		if _, err := s.GetFrame(ctx, id, f2); !errors.Is(err, ErrFrameNotFound) {
			t.Errorf("frame of removed chapter: err = %v", err)
		}
	})

	t.Run("ModifyFrameRenames", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.InitProject(ctx, "renames")
		s.AddChapter(ctx, id, "ch1")
		fid, _ := s.AppendFrame(ctx, id, "ch1", "draft")

		detail := models.NewFrameDetail()
		detail.Name = "final"
		if err := s.ModifyFrame(ctx, id, fid, detail); err != nil {
			t.Fatalf("ModifyFrame: %v", err)
		}
		entries, _ := s.ListFrames(ctx, id, "ch1")
		if len(entries) != 1 || entries[0].FrameName != "final" {
			t.Errorf("ListFrames = %+v", entries)
		}
		if err := s.ModifyFrame(ctx, id, 42, detail); !errors.Is(err, ErrFrameNotFound) {
			t.Errorf("ModifyFrame unknown fid: err = %v", err)
		}
	})
}

// runConcurrentAddContract checks that racing adds of one name leave a
// single entry behind.
func runConcurrentAddContract(t *testing.T, s interfaces.StoryStore) {
	ctx := context.Background()
	id, _ := s.InitProject(ctx, "racing")

	const n = 16
	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddChapter(ctx, id, "ch1"); err == nil {
				created.Inc()
			} else if !errors.Is(err, ErrChapterExists) {
				t.Errorf("AddChapter: %v", err)
			}
			if err := s.AddResource(ctx, id, models.ResourceMusic, "theme.ogg"); err != nil {
				t.Errorf("AddResource: %v", err)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("%d goroutines created ch1, want 1", created.Load())
	}
	if got, _ := s.ListChapters(ctx, id); !reflect.DeepEqual(got, []string{"ch1"}) {
		t.Errorf("ListChapters = %v", got)
	}
	if got, _ := s.ListResources(ctx, id, models.ResourceMusic); !reflect.DeepEqual(got, []string{"theme.ogg"}) {
		t.Errorf("ListResources = %v", got)
	}
}
