package github

// FileContent represents the decoded content of a file at a commit.
type FileContent struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	Content []byte `json:"content"`
}

// commitResponse is the subset of GET /repos/{o}/{r}/commits/{ref} we need.
type commitResponse struct {
	SHA string `json:"sha"`
}

// apiContentResponse is the internal GitHub API response for file content.
type apiContentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
