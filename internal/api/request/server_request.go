package request

type SubmitServerRequest struct {
	RequesterID    string `json:"requester_id" validate:"required"`
	ProjectID      string `json:"project_id"`
	ClientName     string `json:"client_name" validate:"required"`
	ServerName     string `json:"server_name" validate:"required"`
	Subdomain      string `json:"subdomain"`
	EstimatedUsage string `json:"estimated_usage" validate:"required,oneof=micro low medium high"`
	Justification  string `json:"justification"`
	Priority       string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
}

type ReviewServerRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
	Note       string `json:"note"`
}
