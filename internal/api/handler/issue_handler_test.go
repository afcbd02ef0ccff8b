package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

// stubIssueService records the inputs the handler passes down and plays back
// canned results.
type stubIssueService struct {
	createIn  ports.CreateIssueInput
	createID  string
	createErr error

	getIssue *domain.Issue
	getErr   error

	listIn  ports.ListIssuesInput
	listRes *ports.ListIssuesResult

	editID string
	editIn ports.EditIssueInput

	deletedID string

	assignID    string
	assignStaff domain.StaffRef

	statusID  string
	statusNew string
	statusBy  string

	upvoteID    string
	upvoteBy    string
	upvoteCount int
	upvoteErr   error
}

func (s *stubIssueService) Create(_ context.Context, in ports.CreateIssueInput) (string, error) {
	s.createIn = in
	return s.createID, s.createErr
}

func (s *stubIssueService) Get(_ context.Context, id string) (*domain.Issue, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.getIssue, nil
}

func (s *stubIssueService) List(_ context.Context, in ports.ListIssuesInput) (*ports.ListIssuesResult, error) {
	s.listIn = in
	return s.listRes, nil
}

func (s *stubIssueService) Edit(_ context.Context, id string, in ports.EditIssueInput) error {
	s.editID, s.editIn = id, in
	return nil
}

func (s *stubIssueService) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return nil
}

func (s *stubIssueService) Assign(_ context.Context, id string, staff domain.StaffRef) error {
	s.assignID, s.assignStaff = id, staff
	return nil
}

func (s *stubIssueService) ChangeStatus(_ context.Context, id string, newStatus, actor string) error {
	s.statusID, s.statusNew, s.statusBy = id, newStatus, actor
	return nil
}

func (s *stubIssueService) Reject(ctx context.Context, id string, actor string) error {
	return s.ChangeStatus(ctx, id, string(domain.StatusRejected), actor)
}

func (s *stubIssueService) Upvote(_ context.Context, id, voterEmail string) (int, error) {
	s.upvoteID, s.upvoteBy = id, voterEmail
	return s.upvoteCount, s.upvoteErr
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateHandler(t *testing.T) {
	svc := &stubIssueService{createID: "issue-1"}
	h := NewIssueHandler(svc)

	body := `{"title":"Pothole","reporter_email":"ana@example.com","category":"roads","location":"Elm St","priority":"high"}`
	c, rec := newTestContext(http.MethodPost, "/v1/issues", body)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var resp createIssueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InsertedID != "issue-1" {
		t.Errorf("inserted_id = %s, want issue-1", resp.InsertedID)
	}
	if svc.createIn.Priority != "high" || svc.createIn.ReporterEmail != "ana@example.com" {
		t.Errorf("service input = %+v", svc.createIn)
	}
}

func TestCreateHandlerValidation(t *testing.T) {
	h := NewIssueHandler(&stubIssueService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"reporter_email":"ana@example.com","category":"roads","location":"Elm St"}`},
		{"bad email", `{"title":"Pothole","reporter_email":"not-an-email","category":"roads","location":"Elm St"}`},
		{"bad priority", `{"title":"Pothole","reporter_email":"ana@example.com","category":"roads","location":"Elm St","priority":"urgent"}`},
		{"not json", `title=Pothole`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/v1/issues", tc.body)
			err := h.Create(c)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("error = %v, want *echo.HTTPError", err)
			}
			if he.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400", he.Code)
			}
		})
	}
}

func TestCreateHandlerPropagatesServiceError(t *testing.T) {
	svc := &stubIssueService{createErr: domain.ErrQuotaExceeded}
	h := NewIssueHandler(svc)

	body := `{"title":"Pothole","reporter_email":"ana@example.com","category":"roads","location":"Elm St"}`
	c, _ := newTestContext(http.MethodPost, "/v1/issues", body)

	if err := h.Create(c); err != domain.ErrQuotaExceeded {
		t.Errorf("Create() error = %v, want ErrQuotaExceeded passed through", err)
	}
}

func TestGetHandler(t *testing.T) {
	issue := &domain.Issue{
		ID:            "issue-1",
		Title:         "Pothole",
		ReporterEmail: "ana@example.com",
		Status:        domain.StatusPending,
		Priority:      domain.PriorityNormal,
		Upvotes:       []string{"ben@example.com"},
		Timeline:      []domain.TimelineEntry{domain.NewTimelineEntry("pending", "Issue created", "ana@example.com")},
		CreatedAt:     time.Now().UTC(),
	}
	h := NewIssueHandler(&stubIssueService{getIssue: issue})

	c, rec := newTestContext(http.MethodGet, "/v1/issues/issue-1", "")
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var resp issueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "issue-1" || resp.Upvotes != 1 {
		t.Errorf("response = %+v, want issue-1 with 1 upvote", resp)
	}
	if len(resp.Timeline) != 1 {
		t.Errorf("timeline = %d entries, want 1", len(resp.Timeline))
	}
}

func TestListHandlerPassesQueryParams(t *testing.T) {
	svc := &stubIssueService{listRes: &ports.ListIssuesResult{
		Items: []*domain.Issue{}, Total: 0, Page: 2, Limit: 5, TotalPages: 0,
	}}
	h := NewIssueHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/issues?page=2&limit=5&category=roads&status=pending&search=pot", "")

	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	in := svc.listIn
	if in.Page != 2 || in.Limit != 5 || in.Category != "roads" || in.Status != "pending" || in.Search != "pot" {
		t.Errorf("service input = %+v", in)
	}
}

func TestListHandlerIgnoresBadPaging(t *testing.T) {
	svc := &stubIssueService{listRes: &ports.ListIssuesResult{Items: []*domain.Issue{}, Page: 1, Limit: 6}}
	h := NewIssueHandler(svc)

	c, _ := newTestContext(http.MethodGet, "/v1/issues?page=abc&limit=-1", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if svc.listIn.Page != 0 {
		t.Errorf("page = %d, want 0 so the service applies its default", svc.listIn.Page)
	}
}

func TestEditHandlerBuildsPatch(t *testing.T) {
	svc := &stubIssueService{}
	h := NewIssueHandler(svc)

	body := `{"title":"New title","by":"ana@example.com"}`
	c, rec := newTestContext(http.MethodPut, "/v1/issues/issue-1", body)
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Edit(c); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if svc.editID != "issue-1" || svc.editIn.ActorEmail != "ana@example.com" {
		t.Errorf("edit call = id %s by %s", svc.editID, svc.editIn.ActorEmail)
	}
	if svc.editIn.Patch.Title == nil || *svc.editIn.Patch.Title != "New title" {
		t.Error("title patch not set")
	}
	if svc.editIn.Patch.Description != nil {
		t.Error("omitted field should stay nil in patch")
	}
}

func TestAssignHandler(t *testing.T) {
	svc := &stubIssueService{}
	h := NewIssueHandler(svc)

	body := `{"name":"Bob","email":"bob@city.gov"}`
	c, rec := newTestContext(http.MethodPatch, "/v1/issues/assign/issue-1", body)
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Assign(c); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if svc.assignID != "issue-1" || svc.assignStaff.Email != "bob@city.gov" {
		t.Errorf("assign call = %s %+v", svc.assignID, svc.assignStaff)
	}
}

func TestChangeStatusHandler(t *testing.T) {
	svc := &stubIssueService{}
	h := NewIssueHandler(svc)

	body := `{"status":"resolved","by":"bob@city.gov"}`
	c, _ := newTestContext(http.MethodPatch, "/v1/issues/status/issue-1", body)
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.ChangeStatus(c); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if svc.statusID != "issue-1" || svc.statusNew != "resolved" || svc.statusBy != "bob@city.gov" {
		t.Errorf("status call = %s %s by %s", svc.statusID, svc.statusNew, svc.statusBy)
	}
}

func TestUpvoteHandler(t *testing.T) {
	svc := &stubIssueService{upvoteCount: 4}
	h := NewIssueHandler(svc)

	body := `{"voter_email":"ben@example.com"}`
	c, rec := newTestContext(http.MethodPatch, "/v1/issues/upvote/issue-1", body)
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Upvote(c); err != nil {
		t.Fatalf("Upvote() error = %v", err)
	}

	var resp upvoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.NewCount != 4 {
		t.Errorf("response = %+v, want success with new_count 4", resp)
	}
	if svc.upvoteID != "issue-1" || svc.upvoteBy != "ben@example.com" {
		t.Errorf("upvote call = %s by %s", svc.upvoteID, svc.upvoteBy)
	}
}

func TestUpvoteHandlerPropagatesDuplicate(t *testing.T) {
	svc := &stubIssueService{upvoteErr: domain.ErrDuplicateVote}
	h := NewIssueHandler(svc)

	body := `{"voter_email":"ben@example.com"}`
	c, _ := newTestContext(http.MethodPatch, "/v1/issues/upvote/issue-1", body)
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Upvote(c); err != domain.ErrDuplicateVote {
		t.Errorf("Upvote() error = %v, want ErrDuplicateVote passed through", err)
	}
}

func TestDeleteHandler(t *testing.T) {
	svc := &stubIssueService{}
	h := NewIssueHandler(svc)

	c, rec := newTestContext(http.MethodDelete, "/v1/issues/issue-1", "")
	c.SetParamNames("id")
	c.SetParamValues("issue-1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if svc.deletedID != "issue-1" {
		t.Errorf("deleted id = %s, want issue-1", svc.deletedID)
	}
}
