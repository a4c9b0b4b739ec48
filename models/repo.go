package models

// Repo is a repository summary passed through from the remote source. Field
// names follow the source wire format so the frontend can consume it as-is.
type Repo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	HTMLURL         string `json:"html_url"`
	Language        string `json:"language,omitempty"`
}
