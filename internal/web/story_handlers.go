package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"Yui-Editor/studio/internal/models"
	"Yui-Editor/studio/internal/storage"
)

func chapterParams(r *http.Request, key string) (models.ProjectID, string, error) {
	id, err := projectParam(r)
	if err != nil {
		return "", "", err
	}
	chapter, err := query(r, key)
	if err != nil {
		return "", "", err
	}
	return id, chapter, nil
}

func frameParams(r *http.Request) (models.ProjectID, models.FrameID, error) {
	id, err := projectParam(r)
	if err != nil {
		return "", models.NoFrame, err
	}
	raw, err := query(r, "fid")
	if err != nil {
		return "", models.NoFrame, err
	}
	fid, err := models.ParseFrameID(raw)
	if err != nil {
		return "", models.NoFrame, err
	}
	return id, fid, nil
}

func (h *Handlers) ListChapters(w http.ResponseWriter, r *http.Request) {
	id, err := projectParam(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	names, err := h.store.ListChapters(r.Context(), id)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, names)
}

func (h *Handlers) AddChapter(w http.ResponseWriter, r *http.Request) {
	id, chapter, err := chapterParams(r, "chapter_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := h.store.AddChapter(r.Context(), id, chapter); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, chapter)
}

func (h *Handlers) RemoveChapter(w http.ResponseWriter, r *http.Request) {
	id, chapter, err := chapterParams(r, "chapter_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := h.store.RemoveChapter(r.Context(), id, chapter); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, nil)
}

func (h *Handlers) listFrames(w http.ResponseWriter, r *http.Request) ([]models.FrameListEntry, bool) {
	id, chapter, err := chapterParams(r, "chapter_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return nil, false
	}
	entries, err := h.store.ListFrames(r.Context(), id, chapter)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return nil, false
	}
	return entries, true
}

// ListFrameIDs returns the frame ids of a chapter in order
func (h *Handlers) ListFrameIDs(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.listFrames(w, r)
	if !ok {
		return
	}
	ids := make([]models.FrameID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	h.reply(w, ids)
}

// ListFrameNames returns the frame names of a chapter, index-aligned with
// ListFrameIDs
func (h *Handlers) ListFrameNames(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.listFrames(w, r)
	if !ok {
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.FrameName)
	}
	h.reply(w, names)
}

func (h *Handlers) AppendFrame(w http.ResponseWriter, r *http.Request) {
	id, chapter, err := chapterParams(r, "to_chapter")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	name, err := query(r, "frame_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	fid, err := h.store.AppendFrame(r.Context(), id, chapter, name)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, fid)
}

func (h *Handlers) RemoveFrame(w http.ResponseWriter, r *http.Request) {
	id, fid, err := frameParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := h.store.RemoveFrame(r.Context(), id, fid); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, nil)
}

func (h *Handlers) GetFrame(w http.ResponseWriter, r *http.Request) {
	id, fid, err := frameParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	detail, err := h.store.GetFrame(r.Context(), id, fid)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, detail)
}

// ModifyFrame replaces a frame body with the JSON FrameDetail in the request
func (h *Handlers) ModifyFrame(w http.ResponseWriter, r *http.Request) {
	id, fid, err := frameParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}

	detail := models.NewFrameDetail()
	if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
		h.replyFail(w, r, "invalid frame body: "+err.Error())
		return
	}
	if detail.Character == nil {
		detail.Character = map[string]models.Position{}
	}

	if err := h.store.ModifyFrame(r.Context(), id, fid, detail); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, nil)
}

func (h *Handlers) EngineMeta(w http.ResponseWriter, r *http.Request) {
	id, err := projectParam(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if _, err := h.store.ProjectName(r.Context(), id); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, models.EngineMeta{Name: EngineName, Version: EngineVersion})
}

// GetStruct returns the project outline. With a chapter parameter only
// that chapter is listed, and an unknown chapter fails.
func (h *Handlers) GetStruct(w http.ResponseWriter, r *http.Request) {
	id, err := projectParam(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	name, err := h.store.ProjectName(r.Context(), id)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}

	chapters, err := h.store.ListChapters(r.Context(), id)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if only := r.URL.Query().Get("chapter"); only != "" {
		found := false
		for _, ch := range chapters {
			if ch == only {
				found = true
				break
			}
		}
		if !found {
			h.replyFail(w, r, fmt.Sprintf("%v: %s", storage.ErrChapterNotFound, only))
			return
		}
		chapters = []string{only}
	}

	project := models.Project{ID: id, Name: name, Chapters: make([]models.Chapter, 0, len(chapters))}
	for _, ch := range chapters {
		entries, err := h.store.ListFrames(r.Context(), id, ch)
		if err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
		project.Chapters = append(project.Chapters, models.Chapter{Name: ch, Frames: entries})
	}
	h.reply(w, project)
}

// Commit acknowledges a flush request. The stores write through, so there
// is nothing buffered; the project must still exist.
func (h *Handlers) Commit(w http.ResponseWriter, r *http.Request) {
	id, err := projectParam(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if _, err := h.store.ListChapters(r.Context(), id); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, nil)
}
