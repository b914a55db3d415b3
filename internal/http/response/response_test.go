package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestRespondServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apierr.NotFound("meal_not_found", "Meal not found"), http.StatusNotFound, "meal_not_found", "Meal not found"},
		{fmt.Errorf("job: %w", errs.ErrNotFound), http.StatusNotFound, "not_found", "job: not found"},
		{errs.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "unauthorized"},
		{fmt.Errorf("missing job id: %w", errs.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument", "missing job id: invalid argument"},
		{errs.ErrConflict, http.StatusConflict, "conflict", "conflict"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}
	for _, tc := range cases {
		rec, body := serve(t, func(c *gin.Context) { RespondServiceError(c, tc.err) })
		if rec.Code != tc.status {
			t.Fatalf("%v: status=%d want %d", tc.err, rec.Code, tc.status)
		}
		if body["status"] != StatusError || body["code"] != tc.code || body["message"] != tc.msg {
			t.Fatalf("%v: body=%v", tc.err, body)
		}
	}
}

func TestRespondAcceptedMergesPayload(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		RespondAccepted(c, gin.H{"job_id": "abc", "status": "ignored"})
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status=%d", rec.Code)
	}
	if body["job_id"] != "abc" || body["status"] != StatusSuccess {
		t.Fatalf("body=%v", body)
	}
}
