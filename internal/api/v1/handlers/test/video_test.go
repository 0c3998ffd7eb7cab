package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "videochat/internal/api/errors"
	"videochat/internal/api/middleware"
	"videochat/internal/api/v1/dto"
	"videochat/internal/api/v1/routes"
	"videochat/internal/app/model"
)

type fakeVideoService struct {
	video   *dto.VideoResponse
	listErr error
}

func (f *fakeVideoService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	return &dto.UploadResponse{Video: f.video, JobID: "job-1"}, nil
}

func (f *fakeVideoService) Get(ctx context.Context, id int64) (*dto.VideoResponse, error) {
	if f.video == nil || f.video.ID != id {
		return nil, apierrors.NewNotFoundError("video")
	}
	return f.video, nil
}

func (f *fakeVideoService) List(ctx context.Context) (*dto.VideoListResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	videos := []*dto.VideoResponse{}
	if f.video != nil {
		videos = append(videos, f.video)
	}
	return &dto.VideoListResponse{Videos: videos, Total: len(videos)}, nil
}

func (f *fakeVideoService) Delete(ctx context.Context, id int64) error {
	if f.video == nil || f.video.ID != id {
		return apierrors.NewNotFoundError("video")
	}
	return nil
}

func (f *fakeVideoService) Status(ctx context.Context, id int64) (*dto.StatusResponse, error) {
	if f.video == nil || f.video.ID != id {
		return nil, apierrors.NewNotFoundError("video")
	}
	return &dto.StatusResponse{VideoID: id, Status: f.video.Status, Step: "transcoding", Progress: 40}, nil
}

func (f *fakeVideoService) Translations(ctx context.Context, id int64) ([]dto.TranslationResponse, error) {
	return []dto.TranslationResponse{{LanguageCode: "en", VTTPath: "en.vtt"}}, nil
}

type fakeChatService struct {
	answer *dto.ChatResponse
	err    error
}

func (f *fakeChatService) Ask(ctx context.Context, videoID int64, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeChatService) History(ctx context.Context, videoID int64) (*dto.ChatHistoryResponse, error) {
	return &dto.ChatHistoryResponse{VideoID: videoID, History: []dto.ChatHistoryEntry{}}, nil
}

type fakeJobService struct{}

func (fakeJobService) Get(ctx context.Context, jobID string) (*dto.JobResponse, error) {
	if jobID != "job-1" {
		return nil, apierrors.NewNotFoundError("job")
	}
	return &dto.JobResponse{JobID: jobID, VideoID: 7, State: "running", Progress: 40}, nil
}

type fakeStreamer struct {
	snapshots []model.StatusSnapshot
}

func (f *fakeStreamer) Watch(ctx context.Context, videoID int64) <-chan model.StatusSnapshot {
	ch := make(chan model.StatusSnapshot)
	go func() {
		defer close(ch)
		for _, s := range f.snapshots {
			select {
			case ch <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func testVideo() *dto.VideoResponse {
	return &dto.VideoResponse{
		ID:           7,
		Filename:     "abc.mp4",
		OriginalName: "holiday.mp4",
		Status:       "completed",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func setupRouter(container *routes.ServiceContainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil))))
	v1 := router.Group("/api/v1")
	routes.RegisterRoutes(v1, container)
	return router
}

func defaultContainer() *routes.ServiceContainer {
	return &routes.ServiceContainer{
		VideoService:   &fakeVideoService{video: testVideo()},
		ChatService:    &fakeChatService{answer: &dto.ChatResponse{Question: "q", Answer: "a"}},
		JobService:     fakeJobService{},
		StatusStreamer: &fakeStreamer{},
	}
}

// closeNotifyRecorder adds the http.CloseNotifier method that gin's
// c.Stream requires but httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool {
	return c.closed
}

func doRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	router.ServeHTTP(w, req)
	return w.ResponseRecorder
}

func TestGetVideo(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/videos/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "holiday.mp4", body["original_filename"])
}

func TestGetVideoInvalidID(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/videos/abc", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bad_request", body["kind"])
}

func TestGetVideoNotFound(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/videos/999", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["kind"])
	assert.NotEmpty(t, body["request_id"])
}

func TestListVideos(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/videos", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
}

func TestDeleteVideo(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodDelete, "/api/v1/videos/7", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/videos/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadMissingFile(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodPost, "/api/v1/videos/upload", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoStatus(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/videos/7/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "transcoding", body["step"])
	assert.Equal(t, float64(40), body["progress"])
}

func TestStatusStream(t *testing.T) {
	container := defaultContainer()
	container.StatusStreamer = &fakeStreamer{snapshots: []model.StatusSnapshot{
		{VideoID: 7, Status: model.StatusProcessing, Step: "transcoding", Progress: 40},
		{VideoID: 7, Status: model.StatusCompleted, Step: "done", Progress: 100},
	}}
	router := setupRouter(container)

	w := doRequest(router, http.MethodGet, "/api/v1/videos/7/status/stream", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Contains(t, body, "event:status")
	assert.Contains(t, body, `"progress":40`)
	assert.Contains(t, body, `"progress":100`)
}

func TestStatusStreamErrorEvent(t *testing.T) {
	container := defaultContainer()
	container.StatusStreamer = &fakeStreamer{snapshots: []model.StatusSnapshot{
		{VideoID: 7, Error: "video not found"},
	}}
	router := setupRouter(container)

	w := doRequest(router, http.MethodGet, "/api/v1/videos/7/status/stream", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event:error")
}

func TestGetJob(t *testing.T) {
	router := setupRouter(defaultContainer())

	w := doRequest(router, http.MethodGet, "/api/v1/jobs/job-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
