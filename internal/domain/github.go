package domain

import "encoding/json"

// GitHubConfig is the singleton remote-sync configuration record.
type GitHubConfig struct {
	Token      string `json:"token,omitempty"`
	Repository string `json:"repository,omitempty"`
	Path       string `json:"path,omitempty"`
}

// Field names of GitHubConfig as they are addressed individually.
const (
	GitHubFieldToken      = "token"
	GitHubFieldRepository = "repository"
	GitHubFieldPath       = "path"
)

// Get returns one field by name. ok is false for unknown names.
func (c GitHubConfig) Get(field string) (value string, ok bool) {
	switch field {
	case GitHubFieldToken:
		return c.Token, true
	case GitHubFieldRepository:
		return c.Repository, true
	case GitHubFieldPath:
		return c.Path, true
	default:
		return "", false
	}
}

// Set assigns one field by name and reports whether the name was known.
func (c *GitHubConfig) Set(field, value string) bool {
	switch field {
	case GitHubFieldToken:
		c.Token = value
	case GitHubFieldRepository:
		c.Repository = value
	case GitHubFieldPath:
		c.Path = value
	default:
		return false
	}
	return true
}

// Merge copies every non-empty field of patch into c.
func (c *GitHubConfig) Merge(patch GitHubConfig) {
	if patch.Token != "" {
		c.Token = patch.Token
	}
	if patch.Repository != "" {
		c.Repository = patch.Repository
	}
	if patch.Path != "" {
		c.Path = patch.Path
	}
}

// IsZero reports whether no field is set.
func (c GitHubConfig) IsZero() bool {
	return c.Token == "" && c.Repository == "" && c.Path == ""
}

// UnmarshalJSON accepts the older "repo" spelling for Repository.
func (c *GitHubConfig) UnmarshalJSON(data []byte) error {
	type plain GitHubConfig
	var aux struct {
		plain
		Repo string `json:"repo,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = GitHubConfig(aux.plain)
	if c.Repository == "" {
		c.Repository = aux.Repo
	}
	return nil
}
