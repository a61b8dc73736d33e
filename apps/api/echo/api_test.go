package echoapi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/photo"
	"github.com/longlg88/wallyhub/core/student"
	"github.com/longlg88/wallyhub/core/view"
	"github.com/longlg88/wallyhub/tests"
)

var ctx = context.Background()

func Test_home(t *testing.T) {
	a := initApp(t)
	rec := a.request(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wallyhub")
}

func Test_teacherAuth(t *testing.T) {
	a := initApp(t)

	b := testutil.CreateBoard(t, a.boards, "Field Trip", "t1", true)
	ann := testutil.JoinStudent(t, a.students, "Ann", "s001", b.ID, "Sekr3tz")
	studentToken := a.studentToken(t, ann)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/boards"},
		{http.MethodPost, "/v1/boards"},
		{http.MethodPost, "/v1/views"},
		{http.MethodGet, "/v1/photos/p1/views"},
		{http.MethodGet, "/v1/teachers/t1/stats"},
		{http.MethodGet, "/v1/activity"},
	}
	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := a.request(t, tt.method, tt.path, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "missing or malformed jwt")

			rec = a.request(t, tt.method, tt.path, "garbage.token.here")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			// a valid student token is not enough
			rec = a.request(t, tt.method, tt.path, studentToken)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func Test_boardApi(t *testing.T) {
	a := initApp(t)
	token := a.teacherToken(t, "t1", "Ms. Frizzle")

	// create; the owner comes from the token, not the body
	rec := a.request(t, http.MethodPost, "/v1/boards", token, marshalObj(t, map[string]string{"title": "Field Trip"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b board.Board
	decodeObj(t, rec, &b)
	assert.Equal(t, "Field Trip", b.Title)
	assert.Equal(t, "t1", b.OwnerID)
	assert.True(t, b.IsActive)

	// missing title
	rec = a.request(t, http.MethodPost, "/v1/boards", token, marshalObj(t, map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// public retrieve
	rec = a.request(t, http.MethodGet, "/v1/boards/"+b.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.request(t, http.MethodGet, "/v1/boards/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// close the board
	rec = a.request(t, http.MethodPatch, "/v1/boards/"+b.ID+"/active", token, marshalObj(t, map[string]bool{"is_active": false}))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	got, err := a.boards.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// owned boards
	rec = a.request(t, http.MethodGet, "/v1/boards", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []board.Board
	decodeObj(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, b.ID, mine[0].ID)

	rec = a.request(t, http.MethodGet, "/v1/boards", a.teacherToken(t, "t2", "Someone Else"))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeObj(t, rec, &mine)
	assert.Len(t, mine, 0)
}

func Test_studentApi(t *testing.T) {
	a := initApp(t)
	b := testutil.CreateBoard(t, a.boards, "Field Trip", "t1", true)
	closed := testutil.CreateBoard(t, a.boards, "Closed Board", "t1", false)

	// register
	body := marshalObj(t, map[string]string{"name": "Ann", "external_id": "s001", "password": "Sekr3tz"})
	rec := a.request(t, http.MethodPost, "/v1/students", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ann student.Student
	decodeObj(t, rec, &ann)
	assert.Equal(t, "s001", ann.ExternalID)
	assert.Empty(t, ann.BoardID)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	// duplicate id
	rec = a.request(t, http.MethodPost, "/v1/students", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// field errors carry json names
	rec = a.request(t, http.MethodPost, "/v1/students", "", marshalObj(t, map[string]string{"name": "Ann"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "external_id")

	// join
	join := marshalObj(t, map[string]string{"name": "Bob", "external_id": "s002", "board_id": b.ID})
	rec = a.request(t, http.MethodPost, "/v1/students/join", "", join)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bob student.Student
	decodeObj(t, rec, &bob)
	assert.Equal(t, b.ID, bob.BoardID)

	// joining a closed board conflicts
	rec = a.request(t, http.MethodPost, "/v1/students/join", "",
		marshalObj(t, map[string]string{"name": "Eve", "external_id": "s003", "board_id": closed.ID}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// login
	creds := map[string]string{"name": "Ann", "external_id": "s001", "password": "Sekr3tz"}
	rec = a.request(t, http.MethodPost, "/v1/students/login", "", marshalObj(t, creds))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login loginResponse
	decodeObj(t, rec, &login)
	assert.Equal(t, ann.ID, login.Student.ID)
	claims, err := parseToken(a.conf, login.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, claims.Role)
	assert.Equal(t, ann.ID, claims.Subject)

	creds["password"] = "wrong-pass"
	rec = a.request(t, http.MethodPost, "/v1/students/login", "", marshalObj(t, creds))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// roster
	rec = a.request(t, http.MethodGet, "/v1/boards/"+b.ID+"/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var roster []student.Student
	decodeObj(t, rec, &roster)
	require.Len(t, roster, 1)
	assert.Equal(t, bob.ID, roster[0].ID)
}

func Test_photoApi(t *testing.T) {
	a := initApp(t)
	b := testutil.CreateBoard(t, a.boards, "Field Trip", "t1", true)
	testutil.JoinStudent(t, a.students, "Ann", "s001", b.ID, "")
	testutil.JoinStudent(t, a.students, "Bob", "s002", b.ID, "")

	// upload
	fields := map[string]string{"title": "My Cat", "student_external_id": "s001", "board_id": b.ID}
	rec := a.upload(t, fields, []byte("not-really-a-jpeg"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p photo.Photo
	decodeObj(t, rec, &p)
	assert.Equal(t, "My Cat", p.Title)
	assert.Equal(t, "s001", p.OwnerExternalID)
	assert.True(t, strings.HasPrefix(p.BlobURL, "memory://"))
	assert.Equal(t, 1, a.blobs.Len())

	// unknown student
	fields["student_external_id"] = "s999"
	rec = a.upload(t, fields, []byte("x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// board listing
	rec = a.request(t, http.MethodGet, "/v1/boards/"+b.ID+"/photos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var photos []photo.Photo
	decodeObj(t, rec, &photos)
	require.Len(t, photos, 1)
	assert.Equal(t, p.ID, photos[0].ID)

	// student listing
	rec = a.request(t, http.MethodGet, "/v1/students/s001/photos?board_id="+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeObj(t, rec, &photos)
	assert.Len(t, photos, 1)

	// visibility
	rec = a.request(t, http.MethodPatch, "/v1/photos/"+p.ID+"/visibility", "",
		marshalObj(t, map[string]interface{}{"is_visible": false, "student_external_id": "s002"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.request(t, http.MethodPatch, "/v1/photos/"+p.ID+"/visibility", "",
		marshalObj(t, map[string]interface{}{"is_visible": false, "student_external_id": "s001"}))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// owner delete
	rec = a.request(t, http.MethodDelete, "/v1/photos/"+p.ID+"?student_external_id=s002", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.request(t, http.MethodDelete, "/v1/photos/"+p.ID+"?student_external_id=s001", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, a.blobs.Len())

	// moderator delete is a teacher endpoint
	p2 := testutil.UploadPhoto(t, a.photos, "flagged", "s002", b.ID)
	rec = a.request(t, http.MethodDelete, "/v1/photos/"+p2.ID+"/moderate", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.request(t, http.MethodDelete, "/v1/photos/"+p2.ID+"/moderate", a.teacherToken(t, "t1", "Ms. Frizzle"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_viewApi(t *testing.T) {
	a := initApp(t)
	token := a.teacherToken(t, "t1", "Ms. Frizzle")

	// track; the viewer is the token subject, whatever the body says
	body := marshalObj(t, map[string]interface{}{
		"photo_id":         "p1",
		"board_id":         "b1",
		"teacher_id":       "spoofed",
		"session_duration": 30.0,
	})
	rec := a.request(t, http.MethodPost, "/v1/views", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.request(t, http.MethodPost, "/v1/views", token,
		marshalObj(t, map[string]interface{}{"photo_id": "p1", "board_id": "b1", "session_duration": 9999.0}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// photo status
	rec = a.request(t, http.MethodGet, "/v1/photos/p1/views", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var status view.PhotoViewStatus
	decodeObj(t, rec, &status)
	assert.Equal(t, 1, status.TotalViews)
	assert.Equal(t, "t1", status.LastViewedBy)
	assert.True(t, status.IsViewed)

	// bulk mark
	rec = a.request(t, http.MethodPost, "/v1/views/bulk", token,
		marshalObj(t, map[string]interface{}{"photo_ids": []string{"p2", "p3"}, "board_id": "b1"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// batched status query
	rec = a.request(t, http.MethodPost, "/v1/photos/views/query", token,
		marshalObj(t, map[string]interface{}{"photo_ids": []string{"p1", "p2", "p3", "p4"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses map[string]view.PhotoViewStatus
	decodeObj(t, rec, &statuses)
	require.Len(t, statuses, 4)
	assert.True(t, statuses["p2"].IsViewed)
	assert.False(t, statuses["p4"].IsViewed)

	// board rollup
	rec = a.request(t, http.MethodGet, "/v1/boards/b1/views", token)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses = nil // decoding into a non-nil map merges keys from the previous response
	decodeObj(t, rec, &statuses)
	assert.Len(t, statuses, 3)

	// teacher stats
	rec = a.request(t, http.MethodGet, "/v1/teachers/t1/stats", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats view.TeacherViewStats
	decodeObj(t, rec, &stats)
	assert.Equal(t, 3, stats.TotalPhotosViewed)
	assert.Equal(t, 3, stats.BoardsActivity["b1"])
	assert.Equal(t, 30.0, stats.AverageViewTime)
}

func Test_activityApi(t *testing.T) {
	a := initApp(t)
	b := testutil.CreateBoard(t, a.boards, "Field Trip", "t1", true)
	testutil.JoinStudent(t, a.students, "Ann", "s001", b.ID, "")
	testutil.UploadPhoto(t, a.photos, "My Cat", "s001", b.ID)

	rec := a.request(t, http.MethodGet, "/v1/activity", a.teacherToken(t, "t1", "Ms. Frizzle"))
	require.Equal(t, http.StatusOK, rec.Code)
	var events []core.ActivityEvent
	decodeObj(t, rec, &events)
	require.Len(t, events, 2)
	// newest first
	assert.Equal(t, core.ActivityPhotoUploaded, events[0].Kind)
	assert.Equal(t, core.ActivityStudentJoined, events[1].Kind)
}
