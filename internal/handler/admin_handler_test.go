package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/advent-api/internal/dto"
	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type adminServiceMock struct {
	err error

	uploadedDoor int
	uploadedReq  dto.UploadContentRequest
	deletedDoor  int
}

func (m *adminServiceMock) Upload(ctx context.Context, door int, req dto.UploadContentRequest) (*dto.UploadContentResponse, error) {
	m.uploadedDoor, m.uploadedReq = door, req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UploadContentResponse{Door: door, Type: models.ContentKind(req.ContentType)}, nil
}

func (m *adminServiceMock) Delete(ctx context.Context, door int) error {
	m.deletedDoor = door
	return m.err
}

func (m *adminServiceMock) Doors(ctx context.Context) ([]dto.AdminDoorView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.AdminDoorView{{Door: 1, Type: models.KindText}}, nil
}

func (m *adminServiceMock) ResolvePreview(token string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "/tmp/nonexistent", nil
}

func (m *adminServiceMock) ClearThumbnails(ctx context.Context) (*dto.ClearThumbnailsResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ClearThumbnailsResponse{Deleted: 4, ResetAt: 99}, nil
}

func adminTestContext(t *testing.T, req *http.Request, door string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if door != "" {
		c.Params = gin.Params{{Key: "door", Value: door}}
	}
	return c, w
}

func multipartUpload(t *testing.T, fields map[string]string, fileField, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/admin/doors/5", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdminHandlerUploadMultipart(t *testing.T) {
	mock := &adminServiceMock{}
	h := NewAdminHandler(mock, 1<<20)

	req := multipartUpload(t, map[string]string{"contentType": "image", "message": "Frohe Weihnachten"},
		"file", "gift.png", []byte("png-bytes"))
	c, w := adminTestContext(t, req, "5")
	h.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 5, mock.uploadedDoor)
	assert.Equal(t, "image", mock.uploadedReq.ContentType)
	assert.Equal(t, "Frohe Weihnachten", mock.uploadedReq.Message)
	require.NotNil(t, mock.uploadedReq.File)
	assert.Equal(t, "gift.png", mock.uploadedReq.File.Name)
	assert.Equal(t, []byte("png-bytes"), mock.uploadedReq.File.Data)
}

func TestAdminHandlerUploadJSON(t *testing.T) {
	mock := &adminServiceMock{}
	h := NewAdminHandler(mock, 1<<20)

	body, err := json.Marshal(dto.UploadContentRequest{
		ContentType: "poll",
		Question:    "Best cookie?",
		Options:     []string{"vanilla", "cinnamon"},
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/admin/doors/7", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	c, w := adminTestContext(t, req, "7")
	h.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 7, mock.uploadedDoor)
	assert.Equal(t, "Best cookie?", mock.uploadedReq.Question)
	assert.Nil(t, mock.uploadedReq.File)
}

func TestAdminHandlerUploadEnforcesSizeLimit(t *testing.T) {
	mock := &adminServiceMock{}
	h := NewAdminHandler(mock, 8)

	req := multipartUpload(t, map[string]string{"contentType": "image"},
		"file", "huge.png", bytes.Repeat([]byte("x"), 64))
	c, w := adminTestContext(t, req, "5")
	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "upload limit")
	assert.Zero(t, mock.uploadedDoor)
}

func TestAdminHandlerUploadRejectsBadDoorParam(t *testing.T) {
	h := NewAdminHandler(&adminServiceMock{}, 1<<20)

	req, err := http.NewRequest(http.MethodPost, "/admin/doors/gift", nil)
	require.NoError(t, err)
	c, w := adminTestContext(t, req, "gift")
	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandlerDelete(t *testing.T) {
	mock := &adminServiceMock{}
	h := NewAdminHandler(mock, 1<<20)

	req, err := http.NewRequest(http.MethodDelete, "/admin/doors/5", nil)
	require.NoError(t, err)
	c, w := adminTestContext(t, req, "5")
	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 5, mock.deletedDoor)
}

func TestAdminHandlerDeleteMissingDoor(t *testing.T) {
	mock := &adminServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "door 5 has no content")}
	h := NewAdminHandler(mock, 1<<20)

	req, err := http.NewRequest(http.MethodDelete, "/admin/doors/5", nil)
	require.NoError(t, err)
	c, w := adminTestContext(t, req, "5")
	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandlerClearThumbnails(t *testing.T) {
	h := NewAdminHandler(&adminServiceMock{}, 1<<20)

	req, err := http.NewRequest(http.MethodPost, "/admin/thumbnails/clear", nil)
	require.NoError(t, err)
	c, w := adminTestContext(t, req, "")
	h.ClearThumbnails(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.ClearThumbnailsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 4, envelope.Data.Deleted)
}

func TestAdminHandlerPreviewRejectsBadToken(t *testing.T) {
	mock := &adminServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "invalid preview token")}
	h := NewAdminHandler(mock, 1<<20)

	req, err := http.NewRequest(http.MethodGet, "/admin/media/garbage", nil)
	require.NoError(t, err)
	c, w := adminTestContext(t, req, "")
	c.Params = gin.Params{{Key: "token", Value: "garbage"}}
	h.Preview(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
