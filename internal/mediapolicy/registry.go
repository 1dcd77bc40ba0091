// Package mediapolicy defines which media types the platform accepts
// for upload and which derived renditions the processing pipeline
// produces. The policy ships embedded in the binary so every deploy
// agrees on it without external configuration.
package mediapolicy

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"galeria/internal/domain"
)

//go:embed config/*.yaml
var configFS embed.FS

// Registry holds the parsed upload policy and answers mime type and
// extension lookups for asset registration
type Registry struct {
	mu       sync.RWMutex
	policy   *UploadPolicy
	byMime   map[string]*MediaType
	byExt    map[string]*MediaType
	variants map[string]*Variant
}

// NewRegistry creates a registry from the embedded policy files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		byMime:   make(map[string]*MediaType),
		byExt:    make(map[string]*MediaType),
		variants: make(map[string]*Variant),
	}

	entries, err := configFS.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		if err := r.loadPolicyFile(entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
	}

	if r.policy == nil {
		return nil, fmt.Errorf("no media policy found in embedded config")
	}

	return r, nil
}

// loadPolicyFile reads and parses a single policy YAML file
func (r *Registry) loadPolicyFile(filename string) error {
	data, err := configFS.ReadFile("config/" + filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var policy UploadPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.policy = &policy
	for i := range policy.Types {
		mt := &policy.Types[i]
		r.byMime[mt.ID] = mt
		for _, ext := range mt.Extensions {
			r.byExt[strings.ToLower(ext)] = mt
		}
	}
	for i := range policy.Variants {
		v := &policy.Variants[i]
		r.variants[v.Name] = v
	}

	return nil
}

// Allowed reports whether the mime type is accepted for upload
func (r *Registry) Allowed(mimeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byMime[normalizeMime(mimeType)]
	return ok
}

// Lookup returns the media type entry for a mime type
func (r *Registry) Lookup(mimeType string) (*MediaType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt, ok := r.byMime[normalizeMime(mimeType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported media type %q", domain.ErrValidation, mimeType)
	}
	cp := *mt
	return &cp, nil
}

// LookupByExtension returns the media type entry for a file extension.
// The extension must include the leading dot.
func (r *Registry) LookupByExtension(ext string) (*MediaType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file extension %q", domain.ErrValidation, ext)
	}
	cp := *mt
	return &cp, nil
}

// Types returns all accepted media types in declaration order
func (r *Registry) Types() []MediaType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MediaType, len(r.policy.Types))
	copy(out, r.policy.Types)
	return out
}

// Variants returns all rendition definitions in declaration order
func (r *Registry) Variants() []Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Variant, len(r.policy.Variants))
	copy(out, r.policy.Variants)
	return out
}

// Variant returns a single rendition definition by name
func (r *Registry) Variant(name string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown variant %q", domain.ErrNotFound, name)
	}
	cp := *v
	return &cp, nil
}

// Policy returns the full parsed policy for API exposure
func (r *Registry) Policy() UploadPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]MediaType, len(r.policy.Types))
	copy(types, r.policy.Types)
	variants := make([]Variant, len(r.policy.Variants))
	copy(variants, r.policy.Variants)

	return UploadPolicy{
		Policy:   r.policy.Policy,
		Types:    types,
		Variants: variants,
	}
}

// normalizeMime lowercases a mime type and strips any parameters,
// "image/JPEG; charset=binary" becomes "image/jpeg"
func normalizeMime(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
