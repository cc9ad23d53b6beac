package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type doorServiceMock struct {
	listing    models.Listing
	content    models.DoorContent
	mediaPath  string
	storedName string
	storedKind models.ContentKind
	err        error
	state      models.DoorState
}

func (m *doorServiceMock) Listing(ctx context.Context, state models.DoorState) (models.Listing, time.Time, error) {
	m.state = state
	if m.err != nil {
		return nil, time.Time{}, m.err
	}
	return m.listing, time.Now(), nil
}

func (m *doorServiceMock) Door(ctx context.Context, door int, state models.DoorState) (models.DoorContent, error) {
	m.state = state
	if m.err != nil {
		return models.DoorContent{}, m.err
	}
	return m.content, nil
}

func (m *doorServiceMock) MediaFile(ctx context.Context, door int) (string, error) {
	return m.mediaPath, m.err
}

func (m *doorServiceMock) PuzzleImageFile(ctx context.Context, door int) (string, error) {
	return m.mediaPath, m.err
}

func (m *doorServiceMock) StoredContent(ctx context.Context, door int) (string, models.ContentKind, error) {
	return m.storedName, m.storedKind, m.err
}

type thumbnailServiceMock struct {
	path     string
	askedFor models.ContentKind
}

func (m *thumbnailServiceMock) Generate(ctx context.Context, filename string, kind models.ContentKind) (string, error) {
	m.askedFor = kind
	return m.path, nil
}

func doorTestContext(t *testing.T, method, target, doorParam string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	if doorParam != "" {
		c.Params = gin.Params{{Key: "door", Value: doorParam}}
	}
	return c, w
}

func TestDoorHandlerGetGatedDoorReturnsLocked(t *testing.T) {
	mock := &doorServiceMock{err: appErrors.Clone(appErrors.ErrNotYetAvailable, "door 20 is not available yet")}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors/20", "20")

	handler.Get(c)
	require.Equal(t, http.StatusLocked, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotYetAvailable.Code, envelope.Error.Code)
}

func TestDoorHandlerGetRejectsNonNumericDoor(t *testing.T) {
	handler := NewDoorHandler(&doorServiceMock{}, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors/first", "first")

	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDoorHandlerGetPassesClientState(t *testing.T) {
	text := "hello"
	mock := &doorServiceMock{content: models.DoorContent{Type: models.KindText, Data: &text}}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, `/doors/2?state={"2":{"win":true}}`, "2")

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DoorState{2: {Win: true}}, mock.state)
}

func TestDoorHandlerGetMalformedStateTreatedAsNone(t *testing.T) {
	mock := &doorServiceMock{content: models.DoorContent{Type: models.KindText}}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors/2?state=not-json", "2")

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mock.state)
}

func TestDoorHandlerListEnvelopesListing(t *testing.T) {
	mock := &doorServiceMock{listing: models.Listing{1: {Type: models.KindNotAvailable}}}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors", "")

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]models.DoorContent `json:"data"`
		Meta map[string]interface{}        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.KindNotAvailable, envelope.Data["1"].Type)
	assert.Contains(t, envelope.Meta, "generatedAt")
}

func TestDoorHandlerThumbnailUsesClassifiedKind(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "7.txt")
	require.NoError(t, os.WriteFile(mediaPath, []byte("<[puzzle]>"), 0o644))
	thumbPath := filepath.Join(dir, "thumb_7.jpg")
	require.NoError(t, os.WriteFile(thumbPath, []byte("placeholder-bytes"), 0o644))

	mock := &doorServiceMock{mediaPath: mediaPath, storedName: "7.txt", storedKind: models.KindPuzzle}
	thumbs := &thumbnailServiceMock{path: thumbPath}
	handler := NewDoorHandler(mock, thumbs)
	c, w := doorTestContext(t, http.MethodGet, "/doors/7/thumbnail", "7")

	handler.Thumbnail(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindPuzzle, thumbs.askedFor)
	assert.Equal(t, "placeholder-bytes", w.Body.String())
}

func TestDoorHandlerThumbnailFallsBackToMedia(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "4_gift.png")
	require.NoError(t, os.WriteFile(mediaPath, []byte("png-bytes"), 0o644))

	mock := &doorServiceMock{mediaPath: mediaPath, storedName: "4_gift.png", storedKind: models.KindImage}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors/4/thumbnail", "4")

	handler.Thumbnail(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestDoorHandlerResponsesAreUncached(t *testing.T) {
	mock := &doorServiceMock{content: models.DoorContent{Type: models.KindText}}
	handler := NewDoorHandler(mock, &thumbnailServiceMock{})
	c, w := doorTestContext(t, http.MethodGet, "/doors/2", "2")

	handler.Get(c)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
