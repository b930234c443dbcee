package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Project is one registered repository root
type Project struct {
	Path    string    `yaml:"path"`
	Author  string    `yaml:"author,omitempty"`
	AddedAt time.Time `yaml:"added_at"`
}

// ProjectRegistry is the on-disk registry of known project roots,
// stored at ~/.gitday/projects.yaml
type ProjectRegistry struct {
	path     string
	Projects map[string]Project `yaml:"projects"`
}

// ProjectsPath returns the default registry location
func ProjectsPath() string {
	return filepath.Join(Dir(), "projects.yaml")
}

// LoadProjects reads the registry, returning an empty one if the file
// does not exist yet
func LoadProjects(path string) (*ProjectRegistry, error) {
	if path == "" {
		path = ProjectsPath()
	}
	reg := &ProjectRegistry{
		path:     path,
		Projects: make(map[string]Project),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project registry: %w", err)
	}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("failed to parse project registry %s: %w", path, err)
	}
	if reg.Projects == nil {
		reg.Projects = make(map[string]Project)
	}
	return reg, nil
}

// Save writes the registry back to disk
func (r *ProjectRegistry) Save() error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal project registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project registry: %w", err)
	}
	return nil
}

// Add registers a project root and returns the name it was stored
// under. Empty names default to the directory basename; duplicates get
// a numeric suffix.
func (r *ProjectRegistry) Add(path, name, author string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if name == "" {
		name = filepath.Base(abs)
	}

	candidate := name
	for i := 1; ; i++ {
		if _, exists := r.Projects[candidate]; !exists {
			break
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}

	r.Projects[candidate] = Project{
		Path:    abs,
		Author:  author,
		AddedAt: time.Now(),
	}
	return candidate, nil
}

// Remove deletes a project by name, reporting whether it existed
func (r *ProjectRegistry) Remove(name string) bool {
	if _, ok := r.Projects[name]; !ok {
		return false
	}
	delete(r.Projects, name)
	return true
}

// Update changes a project's path, author, or name. Empty arguments
// leave the corresponding field untouched.
func (r *ProjectRegistry) Update(name, newPath, newAuthor, newName string) error {
	p, ok := r.Projects[name]
	if !ok {
		return fmt.Errorf("unknown project: %s", name)
	}
	if newPath != "" {
		abs, err := filepath.Abs(newPath)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", newPath, err)
		}
		p.Path = abs
	}
	if newAuthor != "" {
		p.Author = newAuthor
	}
	if newName != "" && newName != name {
		if _, exists := r.Projects[newName]; exists {
			return fmt.Errorf("project name already in use: %s", newName)
		}
		delete(r.Projects, name)
		name = newName
	}
	r.Projects[name] = p
	return nil
}

// Get returns a project by name
func (r *ProjectRegistry) Get(name string) (Project, bool) {
	p, ok := r.Projects[name]
	return p, ok
}

// Names returns registered project names in stable order
func (r *ProjectRegistry) Names() []string {
	names := make([]string, 0, len(r.Projects))
	for name := range r.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
