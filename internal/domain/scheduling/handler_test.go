package scheduling

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestServer() (*echo.Echo, *Service) {
	svc, _ := newTestService()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	return e, svc
}

func createBody(in CreateInput) string {
	b, _ := json.Marshal(in)
	return string(b)
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateReturns201WithView(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(validInput()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Color != "#8B5CF6" {
		t.Errorf("expected derived color in response, got %q", v.Color)
	}
	if v.ID == uuid.Nil {
		t.Errorf("expected assigned id")
	}
}

func TestHandlerCreateValidationReturns400(t *testing.T) {
	e, _ := newTestServer()

	in := validInput()
	in.EndTime = "08:00"
	rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(in))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerCreateConflictReturns409(t *testing.T) {
	e, _ := newTestServer()

	in := validInput()
	if rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(in)); rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}
	in.StartTime = "10:00"
	in.EndTime = "12:00"
	rec := doJSON(e, http.MethodPost, "/api/v1/schedules", createBody(in))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerGetUnknownReturns404(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/api/v1/schedules/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerGetBadIDReturns400(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/api/v1/schedules/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerListRequiresAgencyID(t *testing.T) {
	e, _ := newTestServer()

	rec := doJSON(e, http.MethodGet, "/api/v1/schedules", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without agency_id, got %d", rec.Code)
	}
}

func TestHandlerListPaginatedResponse(t *testing.T) {
	e, svc := newTestServer()

	agency := uuid.New()
	for i := 0; i < 3; i++ {
		in := validInput()
		in.AgencyID = agency
		in.StartTime = fmt.Sprintf("%02d:00", 8+2*i)
		in.EndTime = fmt.Sprintf("%02d:00", 9+2*i)
		mustCreate(t, svc, in)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/schedules?agency_id="+agency.String()+"&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data    []*View `json:"data"`
		Total   int     `json:"total"`
		HasMore bool    `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || len(resp.Data) != 2 || !resp.HasMore {
		t.Fatalf("unexpected page: total=%d len=%d has_more=%v", resp.Total, len(resp.Data), resp.HasMore)
	}
}

func TestHandlerListRejectsBadFilterValues(t *testing.T) {
	e, _ := newTestServer()

	agency := uuid.NewString()
	targets := []string{
		"/api/v1/schedules?agency_id=" + agency + "&status=BOGUS",
		"/api/v1/schedules?agency_id=" + agency + "&category=bogus",
		"/api/v1/schedules?agency_id=" + agency + "&date_from=03-02-2026",
		"/api/v1/schedules?agency_id=" + agency + "&worker_id=nope",
	}
	for _, target := range targets {
		if rec := doJSON(e, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHandlerUpdateInvalidTransitionReturns400(t *testing.T) {
	e, svc := newTestServer()
	a := mustCreate(t, svc, validInput())

	rec := doJSON(e, http.MethodPut, "/api/v1/schedules/"+a.ID.String(), `{"status":"COMPLETED"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDelete(t *testing.T) {
	e, svc := newTestServer()
	a := mustCreate(t, svc, validInput())

	rec := doJSON(e, http.MethodDelete, "/api/v1/schedules/"+a.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doJSON(e, http.MethodDelete, "/api/v1/schedules/"+a.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}
