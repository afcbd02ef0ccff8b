package handler

import (
	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

func toIssueResponse(i *domain.Issue) issueResponse {
	resp := issueResponse{
		ID:              i.ID,
		Title:           i.Title,
		Description:     i.Description,
		ReporterEmail:   i.ReporterEmail,
		ReporterPremium: i.ReporterPremium,
		Category:        i.Category,
		Location:        i.Location,
		ImageURL:        i.ImageURL,
		Priority:        string(i.Priority),
		Status:          string(i.Status),
		Upvotes:         len(i.Upvotes),
		Voters:          i.Upvotes,
		Timeline:        toTimelineResponse(i.Timeline),
		CreatedAt:       i.CreatedAt.UTC(),
	}
	if i.AssignedStaff != nil {
		resp.AssignedStaff = &staffRefResponse{
			Name:  i.AssignedStaff.Name,
			Email: i.AssignedStaff.Email,
		}
	}
	return resp
}

func toTimelineResponse(entries []domain.TimelineEntry) []timelineEntryResponse {
	out := make([]timelineEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = timelineEntryResponse{
			Status:  e.Status,
			Message: e.Message,
			By:      e.By,
			At:      e.At.UTC(),
		}
	}
	return out
}

func toListResponse(r *ports.ListIssuesResult) listIssuesResponse {
	items := make([]issueSummaryResponse, len(r.Items))
	for i, issue := range r.Items {
		items[i] = issueSummaryResponse{
			ID:            issue.ID,
			Title:         issue.Title,
			Category:      issue.Category,
			Location:      issue.Location,
			Priority:      string(issue.Priority),
			Status:        string(issue.Status),
			ReporterEmail: issue.ReporterEmail,
			Upvotes:       len(issue.Upvotes),
			CreatedAt:     issue.CreatedAt.UTC(),
		}
	}
	return listIssuesResponse{
		Total:  r.Total,
		Issues: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toFieldPatch(req editIssueRequest) ports.IssueFieldPatch {
	return ports.IssueFieldPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	}
}
