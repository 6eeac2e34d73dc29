package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"Yui-Editor/studio/internal/models"
	"Yui-Editor/studio/internal/storage"
	"Yui-Editor/studio/internal/testutil"
	"Yui-Editor/studio/internal/web"
)

type rawEnvelope struct {
	Status  int             `json:"status"`
	Msg     string          `json:"msg"`
	Content json.RawMessage `json:"content"`
}

func call(t *testing.T, method, url string, body *bytes.Buffer, contentType string) rawEnvelope {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: HTTP %d", method, url, resp.StatusCode)
	}
	var env rawEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func initProject(t *testing.T, b *testutil.Backend, name string) string {
	t.Helper()

	env := call(t, http.MethodPost, b.BaseURL()+"init_project/?base_dir="+name, nil, "")
	if env.Status != 1 {
		t.Fatalf("init_project failed: %s", env.Msg)
	}
	var content struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(env.Content, &content); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	return content.TaskID
}

func TestHealthCheck(t *testing.T) {
	b := testutil.NewBackend(t)

	resp, err := http.Get(b.Server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if b.Requests() != 0 {
		t.Errorf("health check counted as an API request")
	}
}

func TestTrailingSlashOptional(t *testing.T) {
	b := testutil.NewBackend(t)

	for _, path := range []string{"list_projects/", "list_projects"} {
		env := call(t, http.MethodGet, b.BaseURL()+path, nil, "")
		if env.Status != 1 {
			t.Errorf("%s: status = %d", path, env.Status)
		}
	}
	if got := b.Requests(); got != 2 {
		t.Errorf("Requests() = %d, want 2", got)
	}
}

func TestInitProjectIdempotent(t *testing.T) {
	b := testutil.NewBackend(t)

	first := initProject(t, b, "StoryA")
	second := initProject(t, b, "storya")
	if first == "" || first != second {
		t.Errorf("task ids = %q, %q", first, second)
	}
}

func TestFailuresUseEnvelopeStatus(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "failures")

	tests := []struct {
		name string
		path string
	}{
		{"short project name", "init_project/?base_dir=abc"},
		{"missing task id", "engine/get_chapters/"},
		{"unknown project", "engine/get_chapters/?task_id=nope"},
		{"unknown resource type", "get_res/?task_id=" + id + "&rtype=video"},
		{"bad frame id", "engine/get_frame/?task_id=" + id + "&fid=abc"},
		{"unknown chapter", "engine/get_frame_ids/?task_id=" + id + "&chapter_name=none"},
		{"unknown frame", "engine/get_frame/?task_id=" + id + "&fid=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := call(t, http.MethodPost, b.BaseURL()+tt.path, nil, "")
			if env.Status != 0 {
				t.Errorf("status = %d, want 0", env.Status)
			}
			if env.Msg == "" {
				t.Error("failure carried no message")
			}
		})
	}
}

func TestUploadFiles(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "uploads")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range []string{"a.png", "b.png"} {
		part, _ := w.CreateFormFile("files", name)
		part.Write([]byte("png"))
	}
	w.Close()

	env := call(t, http.MethodPost, b.BaseURL()+"upload_files/?task_id="+id+"&rtype=background", &body, w.FormDataContentType())
	if env.Status != 1 {
		t.Fatalf("upload_files failed: %s", env.Msg)
	}

	env = call(t, http.MethodPost, b.BaseURL()+"get_res/?task_id="+id+"&rtype=background", nil, "")
	var names []string
	json.Unmarshal(env.Content, &names)
	if !reflect.DeepEqual(names, []string{"a.png", "b.png"}) {
		t.Errorf("get_res = %v", names)
	}
}

func TestUploadWrongField(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "uploads")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("files", "a.png")
	part.Write([]byte("png"))
	w.Close()

	env := call(t, http.MethodPost, b.BaseURL()+"upload/?task_id="+id+"&rtype=background", &body, w.FormDataContentType())
	if env.Status != 0 {
		t.Errorf("upload accepted field %q", "files")
	}
}

func TestModifyFrameBody(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "frames")

	call(t, http.MethodPost, b.BaseURL()+"engine/add_chapter/?task_id="+id+"&chapter_name=ch1", nil, "")
	env := call(t, http.MethodPost, b.BaseURL()+"engine/append_frame/?task_id="+id+"&to_chapter=ch1&frame_name=f1", nil, "")
	var fid models.FrameID
	if err := json.Unmarshal(env.Content, &fid); err != nil {
		t.Fatalf("decode frame id: %v", err)
	}

	detail := models.NewFrameDetail()
	detail.Dialog = "Hello"
	data, _ := json.Marshal(detail)
	env = call(t, http.MethodPost, b.BaseURL()+"engine/modify_frame/?task_id="+id+"&fid="+fid.String(), bytes.NewBuffer(data), "application/json")
	if env.Status != 1 {
		t.Fatalf("modify_frame failed: %s", env.Msg)
	}

	env = call(t, http.MethodGet, b.BaseURL()+"engine/get_frame/?task_id="+id+"&fid="+fid.String(), nil, "")
	var got models.FrameDetail
	json.Unmarshal(env.Content, &got)
	if got.Dialog != "Hello" || got.Name != "f1" {
		t.Errorf("get_frame = %+v", got)
	}

	env = call(t, http.MethodPost, b.BaseURL()+"engine/modify_frame/?task_id="+id+"&fid="+fid.String(), bytes.NewBufferString("{"), "application/json")
	if env.Status != 0 {
		t.Error("modify_frame accepted a malformed body")
	}
}

func TestCORSPreflight(t *testing.T) {
	b := testutil.NewBackend(t)

	req, _ := http.NewRequest(http.MethodOptions, b.BaseURL()+"list_projects/", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestNewHandlersDefaultsLogger(t *testing.T) {
	h := web.NewHandlers(nil, nil)
	if h.Requests() != 0 {
		t.Errorf("Requests() = %d", h.Requests())
	}
}

func TestUploadKeepsFiles(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	h := web.NewHandlers(storage.NewMemoryStore(), testutil.DiscardLogger()).WithFiles(files)
	srv := httptest.NewServer(web.NewRouter(h))
	defer srv.Close()
	base := srv.URL + "/"

	env := call(t, http.MethodPost, base+"init_project/?base_dir=withfiles", nil, "")
	var content struct {
		TaskID string `json:"task_id"`
	}
	json.Unmarshal(env.Content, &content)
	id := content.TaskID

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "theme.ogg")
	part.Write([]byte("ogg-bytes"))
	w.Close()

	env = call(t, http.MethodPost, base+"upload/?task_id="+id+"&rtype=music", &body, w.FormDataContentType())
	if env.Status != 1 {
		t.Fatalf("upload failed: %s", env.Msg)
	}
	call(t, http.MethodPost, base+"rename_res/?task_id="+id+"&rtype=music&item_name=theme.ogg&new_name=main.ogg", nil, "")

	resp, err := http.Get(srv.URL + "/files/" + id + "/music/main.ogg")
	if err != nil {
		t.Fatalf("GET file: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(data) != "ogg-bytes" {
		t.Errorf("GET file = %d %q", resp.StatusCode, data)
	}

	call(t, http.MethodPost, base+"remove_res/?task_id="+id+"&rtype=music&item_name=main.ogg", nil, "")
	resp, err = http.Get(srv.URL + "/files/" + id + "/music/main.ogg")
	if err != nil {
		t.Fatalf("GET file: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("removed file status = %d", resp.StatusCode)
	}
}

func TestRemoveProjectDropsFiles(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	h := web.NewHandlers(storage.NewMemoryStore(), testutil.DiscardLogger()).WithFiles(files)
	srv := httptest.NewServer(web.NewRouter(h))
	defer srv.Close()
	base := srv.URL + "/"

	tests := []struct {
		name   string
		remove func(id string) string
	}{
		{"byname", func(string) string { return "remove_project/?project_name=byname" }},
		{"byid", func(id string) string { return "remove_project_by_id/?task_id=" + id }},
	}
	for _, tt := range tests {
		env := call(t, http.MethodPost, base+"init_project/?base_dir="+tt.name, nil, "")
		var content struct {
			TaskID string `json:"task_id"`
		}
		json.Unmarshal(env.Content, &content)
		id := models.ProjectID(content.TaskID)

		if _, err := files.Put(id, models.ResourceMusic, "theme.ogg", bytes.NewBufferString("ogg")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		path := tt.remove(string(id))
		if env := call(t, http.MethodPost, base+path, nil, ""); env.Status != 1 {
			t.Fatalf("%s: %s", path, env.Msg)
		}
		kept, _ := files.Path(id, models.ResourceMusic, "theme.ogg")
		if _, err := os.Stat(kept); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s left %s behind: %v", path, kept, err)
		}
		if env := call(t, http.MethodPost, base+path, nil, ""); env.Status != 0 {
			t.Errorf("second %s succeeded", path)
		}
	}
}

func TestListResourcesFilter(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "filters")
	for _, name := range []string{"hall_day.png", "street.png", "hall_night.png"} {
		b.Store.AddResource(context.Background(), models.ProjectID(id), models.ResourceBackground, name)
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"hall_day.png", "street.png", "hall_night.png"}},
		{"hall", []string{"hall_day.png", "hall_night.png"}},
		{"night", []string{"hall_night.png"}},
		{"lobby", []string{}},
	}
	for _, tt := range tests {
		env := call(t, http.MethodPost, b.BaseURL()+"get_res/?task_id="+id+"&rtype=background&filter_by="+tt.filter, nil, "")
		var names []string
		if err := json.Unmarshal(env.Content, &names); err != nil {
			t.Fatalf("filter %q: %v", tt.filter, err)
		}
		if !reflect.DeepEqual(names, tt.want) {
			t.Errorf("filter %q = %v, want %v", tt.filter, names, tt.want)
		}
	}
}

func TestEngineMeta(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "metadata")

	env := call(t, http.MethodPost, b.BaseURL()+"engine/meta/?task_id="+id, nil, "")
	var meta models.EngineMeta
	json.Unmarshal(env.Content, &meta)
	if env.Status != 1 || meta.Name != web.EngineName || meta.Version != web.EngineVersion {
		t.Errorf("meta = %d %+v", env.Status, meta)
	}
	if env := call(t, http.MethodPost, b.BaseURL()+"engine/meta/?task_id=nope", nil, ""); env.Status != 0 {
		t.Error("meta of an unknown project succeeded")
	}
}

func TestGetStruct(t *testing.T) {
	b := testutil.NewBackend(t)
	id := initProject(t, b, "Outline")
	ctx := context.Background()
	pid := models.ProjectID(id)
	b.Store.AddChapter(ctx, pid, "ch1")
	b.Store.AddChapter(ctx, pid, "ch2")
	f0, _ := b.Store.AppendFrame(ctx, pid, "ch1", "opening")
	f1, _ := b.Store.AppendFrame(ctx, pid, "ch2", "meanwhile")

	env := call(t, http.MethodPost, b.BaseURL()+"engine/get_struct/?task_id="+id, nil, "")
	var project models.Project
	if err := json.Unmarshal(env.Content, &project); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := models.Project{
		ID:   pid,
		Name: "outline",
		Chapters: []models.Chapter{
			{Name: "ch1", Frames: []models.FrameListEntry{{FrameName: "opening", ChapterName: "ch1", ProjectID: pid, ID: f0}}},
			{Name: "ch2", Frames: []models.FrameListEntry{{FrameName: "meanwhile", ChapterName: "ch2", ProjectID: pid, ID: f1}}},
		},
	}
	if !reflect.DeepEqual(project, want) {
		t.Errorf("get_struct = %+v, want %+v", project, want)
	}

	env = call(t, http.MethodPost, b.BaseURL()+"engine/get_struct/?task_id="+id+"&chapter=ch2", nil, "")
	project = models.Project{}
	json.Unmarshal(env.Content, &project)
	if len(project.Chapters) != 1 || project.Chapter("ch2") == nil {
		t.Errorf("get_struct ch2 = %+v", project)
	}

	if env := call(t, http.MethodPost, b.BaseURL()+"engine/get_struct/?task_id="+id+"&chapter=ch9", nil, ""); env.Status != 0 {
		t.Error("get_struct of an unknown chapter succeeded")
	}
}
