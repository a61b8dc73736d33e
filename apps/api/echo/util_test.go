package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/photo"
	"github.com/longlg88/wallyhub/core/student"
	"github.com/longlg88/wallyhub/core/view"
	activitysvc "github.com/longlg88/wallyhub/services/activity"
	blobsvc "github.com/longlg88/wallyhub/services/blob"
	"github.com/longlg88/wallyhub/storage/document"
	"github.com/longlg88/wallyhub/tests"
)

type testApp struct {
	conf     *core.Config
	srv      Server
	blobs    *blobsvc.MemoryStore
	boards   *board.Service
	students *student.Service
	photos   *photo.Service
	views    *view.Service
}

func initApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "WallyHub",
		SecretKey:                 "secret",
		JWTExpirationDelta:        10 * time.Minute,
		JWTRefreshExpirationDelta: 4 * time.Hour,
		Photo:                     core.PhotoConfig{MaxBytes: 5 << 20},
	}
	logger := testutil.NewLogger()
	db := document.Open()
	blobs := blobsvc.NewMemoryStore()
	activity := activitysvc.NewService(db, logger)
	boards := board.NewService(db, logger)
	students := student.NewService(db, boards, activity, logger)
	photos := photo.NewService(db, blobs, students, activity, logger, conf.Photo.MaxBytes)
	views := view.NewService(db, logger)

	srv := NewServer(&Options{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		BoardSvc:       boards,
		StudentSvc:     students,
		PhotoSvc:       photos,
		ViewSvc:        views,
		ActivitySvc:    activity,
	})
	return &testApp{
		conf:     conf,
		srv:      srv,
		blobs:    blobs,
		boards:   boards,
		students: students,
		photos:   photos,
		views:    views,
	}
}

func (a *testApp) request(t *testing.T, method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) upload(t *testing.T, fields map[string]string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("upload() failed: %v", err)
		}
	}
	fw, err := w.CreateFormFile("file", "photo.jpg")
	if err != nil {
		t.Fatalf("upload() failed: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("upload() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("upload() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/photos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) teacherToken(t *testing.T, teacherID, name string) string {
	t.Helper()
	token, err := GenerateToken(a.conf, GetTeacherClaims(a.conf, teacherID, name))
	if err != nil {
		t.Fatalf("teacherToken() failed: %v", err)
	}
	return token
}

func (a *testApp) studentToken(t *testing.T, s student.Student) string {
	t.Helper()
	token, err := GenerateToken(a.conf, GetStudentClaims(a.conf, s))
	if err != nil {
		t.Fatalf("studentToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("decodeObj() failed: %v (body: %s)", err, rec.Body.String())
	}
}
