package domain

import "regexp"

// Project groups tasks that belong to the same site, customer or job.
// Tasks reference a project by ID; the directory holds the rest.
type Project struct {
	ID          string `json:"id" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"` // User ID
}

// DisplayName returns the name, falling back to the ID.
func (p Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

var projectIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,39}$`)

// ValidProjectID reports whether id is a lowercase slug such as "plant-2".
func ValidProjectID(id string) bool {
	return projectIDPattern.MatchString(id)
}
