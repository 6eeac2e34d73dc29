package web

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"Yui-Editor/studio/internal/models"
)

// query returns a required query parameter
func query(r *http.Request, key string) (string, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

func projectParam(r *http.Request) (models.ProjectID, error) {
	v, err := query(r, "task_id")
	if err != nil {
		return "", err
	}
	return models.ProjectID(v), nil
}

func resourceParams(r *http.Request) (models.ProjectID, models.ResourceType, error) {
	id, err := projectParam(r)
	if err != nil {
		return "", "", err
	}
	raw, err := query(r, "rtype")
	if err != nil {
		return "", "", err
	}
	rtype, err := models.ParseResourceType(raw)
	if err != nil {
		return "", "", err
	}
	return id, rtype, nil
}

// InitProject returns the id of the named project, creating it on first use
func (h *Handlers) InitProject(w http.ResponseWriter, r *http.Request) {
	name, err := query(r, "base_dir")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := models.ValidateProjectName(name); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}

	id, err := h.store.InitProject(r.Context(), name)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, map[string]string{"task_id": string(id)})
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListProjects(r.Context())
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.reply(w, names)
}

func (h *Handlers) RemoveProject(w http.ResponseWriter, r *http.Request) {
	name, err := query(r, "project_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	h.removeProject(w, r, name)
}

func (h *Handlers) RemoveProjectByID(w http.ResponseWriter, r *http.Request) {
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
	h.removeProject(w, r, name)
}

// removeProject drops the project and any files kept for it
func (h *Handlers) removeProject(w http.ResponseWriter, r *http.Request, name string) {
	id, err := h.store.RemoveProject(r.Context(), name)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if h.files != nil {
		if err := h.files.RemoveAll(id); err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
	}
	h.logger.Printf("Removed project %q (%s)", name, id)
	h.reply(w, nil)
}

func (h *Handlers) ListResources(w http.ResponseWriter, r *http.Request) {
	id, rtype, err := resourceParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	names, err := h.store.ListResources(r.Context(), id, rtype)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if filter := r.URL.Query().Get("filter_by"); filter != "" {
		kept := make([]string, 0, len(names))
		for _, name := range names {
			if strings.Contains(name, filter) {
				kept = append(kept, name)
			}
		}
		names = kept
	}
	h.reply(w, names)
}

// Upload accepts a single file in multipart field "file"
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "file")
}

// UploadFiles accepts any number of files in multipart field "files"
func (h *Handlers) UploadFiles(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "files")
}

func (h *Handlers) upload(w http.ResponseWriter, r *http.Request, field string) {
	id, rtype, err := resourceParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.replyFail(w, r, "invalid multipart body: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		h.replyFail(w, r, fmt.Sprintf("no files in field %q", field))
		return
	}

	for _, fh := range files {
		if err := h.keep(id, rtype, fh); err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
		if err := h.store.AddResource(r.Context(), id, rtype, fh.Filename); err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
		h.logger.Printf("Stored %s %q (%d bytes) for %s", rtype, fh.Filename, fh.Size, id)
	}
	h.reply(w, nil)
}

// keep writes an uploaded file to the file store, if there is one
func (h *Handlers) keep(id models.ProjectID, rtype models.ResourceType, fh *multipart.FileHeader) error {
	if h.files == nil {
		return nil
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	_, err = h.files.Put(id, rtype, fh.Filename, f)
	return err
}

// ServeResource returns the bytes of an uploaded resource
func (h *Handlers) ServeResource(w http.ResponseWriter, r *http.Request) {
	rtype, err := models.ParseResourceType(chi.URLParam(r, "rtype"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path, err := h.files.Path(models.ProjectID(chi.URLParam(r, "task_id")), rtype, chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *Handlers) RemoveResource(w http.ResponseWriter, r *http.Request) {
	id, rtype, err := resourceParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	name, err := query(r, "item_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := h.store.RemoveResource(r.Context(), id, rtype, name); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if h.files != nil {
		if err := h.files.Remove(id, rtype, name); err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
	}
	h.reply(w, nil)
}

func (h *Handlers) RenameResource(w http.ResponseWriter, r *http.Request) {
	id, rtype, err := resourceParams(r)
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	oldName, err := query(r, "item_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	newName, err := query(r, "new_name")
	if err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if err := h.store.RenameResource(r.Context(), id, rtype, oldName, newName); err != nil {
		h.replyFail(w, r, err.Error())
		return
	}
	if h.files != nil {
		if err := h.files.Rename(id, rtype, oldName, newName); err != nil {
			h.replyFail(w, r, err.Error())
			return
		}
	}
	h.reply(w, nil)
}
