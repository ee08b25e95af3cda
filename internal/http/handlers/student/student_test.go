package student

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management/internal/service"
	"github.com/aanand-mishra/student-management/internal/storage/memory"
	"github.com/aanand-mishra/student-management/internal/types"
	"github.com/aanand-mishra/student-management/internal/utils/response"
)

func newRouter(t *testing.T) (*http.ServeMux, *service.StudentService) {
	t.Helper()
	svc := service.NewStudentService(memory.New())
	router := http.NewServeMux()
	Register(router, svc)
	return router, svc
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusError, resp.Status)
	return resp
}

func TestCreate(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/api/students",
		`{"id": 50, "name": "Alice", "email": "a@x.com", "course": "CS"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Alice","email":"a@x.com","course":"CS"}`, rec.Body.String())
}

func TestCreate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "request body is empty"},
		{"malformed json", `{"name":`, "unexpected EOF"},
		{"missing fields", `{"name":"Alice"}`, "field Email is required, field Course is required"},
		{"bad email", `{"name":"Alice","email":"nope","course":"CS"}`, "field Email must be a valid email address"},
		{"second object", `{"name":"Alice","email":"a@x.com","course":"CS"} {}`, "single JSON object"},
		{"trailing garbage", `{"name":"Alice","email":"a@x.com","course":"CS"}x`, "single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t)

			rec := do(router, http.MethodPost, "/api/students", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tt.want)
		})
	}
}

func TestCreate_TrailingWhitespaceIsAccepted(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/api/students",
		"{\"name\":\"Alice\",\"email\":\"a@x.com\",\"course\":\"CS\"}\n\n")

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreate_BodyTooLarge(t *testing.T) {
	router, svc := newRouter(t)

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `","email":"a@x.com","course":"CS"}`
	rec := do(router, http.MethodPost, "/api/students", body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "must not exceed")

	students, err := svc.GetAllStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestGetList_Empty(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/api/students", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetList(t *testing.T) {
	router, svc := newRouter(t)
	ctx := context.Background()
	_, err := svc.CreateStudent(ctx, types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
	require.NoError(t, err)
	_, err = svc.CreateStudent(ctx, types.Student{Name: "Bob", Email: "b@x.com", Course: "Math"})
	require.NoError(t, err)

	rec := do(router, http.MethodGet, "/api/students", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id":1,"name":"Alice","email":"a@x.com","course":"CS"},
		{"id":2,"name":"Bob","email":"b@x.com","course":"Math"}
	]`, rec.Body.String())
}

func TestGetByID(t *testing.T) {
	router, svc := newRouter(t)
	alice, err := svc.CreateStudent(context.Background(),
		types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
	require.NoError(t, err)

	rec := do(router, http.MethodGet, "/api/students/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, alice, got)
}

func TestGetByID_NotFound(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/api/students/7", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found with id: 7", decodeError(t, rec).Error)
}

func TestGetByID_InvalidID(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/api/students/abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id: must be an integer", decodeError(t, rec).Error)
}

func TestUpdate(t *testing.T) {
	router, svc := newRouter(t)
	_, err := svc.CreateStudent(context.Background(),
		types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
	require.NoError(t, err)

	rec := do(router, http.MethodPut, "/api/students/1",
		`{"name":"Alicia","email":"a@x.com","course":"Math"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Alicia","email":"a@x.com","course":"Math"}`, rec.Body.String())
}

func TestUpdate_NotFound(t *testing.T) {
	router, svc := newRouter(t)

	rec := do(router, http.MethodPut, "/api/students/9",
		`{"name":"Ghost","email":"g@x.com","course":"CS"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found with id: 9", decodeError(t, rec).Error)

	students, err := svc.GetAllStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestUpdate_InvalidBody(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPut, "/api/students/1", `{"name":"Alicia"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_TrailingDataIsRejected(t *testing.T) {
	router, svc := newRouter(t)
	created, err := svc.CreateStudent(context.Background(),
		types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
	require.NoError(t, err)

	rec := do(router, http.MethodPut, "/api/students/1",
		`{"name":"Alicia","email":"a@x.com","course":"Math"}{"name":"Bob"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "single JSON object")

	got, err := svc.GetStudentByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestDelete(t *testing.T) {
	router, svc := newRouter(t)
	_, err := svc.CreateStudent(context.Background(),
		types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
	require.NoError(t, err)

	rec := do(router, http.MethodDelete, "/api/students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_MissingIsOK(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodDelete, "/api/students/404", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// brokenService fails every call with a storage-style error.
type brokenService struct{}

var errStorage = errors.New("storage unavailable")

func (brokenService) GetAllStudents(context.Context) ([]types.Student, error) {
	return nil, errStorage
}
func (brokenService) GetStudentByID(context.Context, int64) (types.Student, error) {
	return types.Student{}, errStorage
}
func (brokenService) CreateStudent(context.Context, types.Student) (types.Student, error) {
	return types.Student{}, errStorage
}
func (brokenService) UpdateStudent(context.Context, int64, types.Student) (types.Student, error) {
	return types.Student{}, errStorage
}
func (brokenService) DeleteStudent(context.Context, int64) error { return errStorage }

func TestStorageErrorsAre500(t *testing.T) {
	router := http.NewServeMux()
	Register(router, brokenService{})
	body := `{"name":"Alice","email":"a@x.com","course":"CS"}`

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/students", ""},
		{http.MethodGet, "/api/students/1", ""},
		{http.MethodPost, "/api/students", body},
		{http.MethodPut, "/api/students/1", body},
		{http.MethodDelete, "/api/students/1", ""},
	} {
		rec := do(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "storage unavailable", decodeError(t, rec).Error)
	}
}
