package mediapolicy

import (
	"errors"
	"testing"

	"galeria/internal/domain"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	types := r.Types()
	if len(types) == 0 {
		t.Fatal("expected at least one media type")
	}

	// Declaration order from the YAML must survive parsing
	if types[0].ID != "image/jpeg" {
		t.Errorf("first type = %q, want image/jpeg", types[0].ID)
	}
}

func TestRegistryAllowed(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		name string
		mime string
		want bool
	}{
		{name: "jpeg", mime: "image/jpeg", want: true},
		{name: "png", mime: "image/png", want: true},
		{name: "uppercase", mime: "IMAGE/JPEG", want: true},
		{name: "with parameters", mime: "image/jpeg; charset=binary", want: true},
		{name: "surrounding whitespace", mime: "  image/png  ", want: true},
		{name: "pdf rejected", mime: "application/pdf", want: false},
		{name: "video rejected", mime: "video/mp4", want: false},
		{name: "empty", mime: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Allowed(tt.mime); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.mime, got, tt.want)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	mt, err := r.Lookup("image/heic")
	if err != nil {
		t.Fatalf("Lookup(image/heic) error = %v", err)
	}
	if mt.DisplayName != "HEIC image" {
		t.Errorf("DisplayName = %q, want HEIC image", mt.DisplayName)
	}
	if len(mt.Extensions) != 2 {
		t.Errorf("Extensions = %v, want 2 entries", mt.Extensions)
	}

	if _, err := r.Lookup("application/zip"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Lookup(application/zip) error = %v, want ErrValidation", err)
	}
}

func TestRegistryLookupByExtension(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		ext      string
		wantMime string
		wantErr  bool
	}{
		{ext: ".jpg", wantMime: "image/jpeg"},
		{ext: ".JPEG", wantMime: "image/jpeg"},
		{ext: ".heif", wantMime: "image/heic"},
		{ext: ".exe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			mt, err := r.LookupByExtension(tt.ext)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupByExtension(%q) error = %v", tt.ext, err)
			}
			if mt.ID != tt.wantMime {
				t.Errorf("ID = %q, want %q", mt.ID, tt.wantMime)
			}
		})
	}
}

func TestRegistryVariants(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	variants := r.Variants()
	if len(variants) != 2 {
		t.Fatalf("Variants() = %d entries, want 2", len(variants))
	}
	if variants[0].Name != "preview" || variants[1].Name != "thumb" {
		t.Errorf("variant order = %q, %q, want preview, thumb", variants[0].Name, variants[1].Name)
	}

	v, err := r.Variant("preview")
	if err != nil {
		t.Fatalf("Variant(preview) error = %v", err)
	}
	if !v.Watermark {
		t.Error("preview variant should carry a watermark")
	}
	if v.MaxEdge != 1600 {
		t.Errorf("preview MaxEdge = %d, want 1600", v.MaxEdge)
	}

	if _, err := r.Variant("poster"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Variant(poster) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryPolicy(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	p := r.Policy()
	if p.Policy != "upload" {
		t.Errorf("Policy = %q, want upload", p.Policy)
	}
	if len(p.Types) != len(r.Types()) {
		t.Errorf("Policy types = %d, want %d", len(p.Types), len(r.Types()))
	}

	// Mutating the returned copy must not affect the registry
	p.Types[0].DisplayName = "mutated"
	if r.Types()[0].DisplayName == "mutated" {
		t.Error("Policy() returned a live reference to registry state")
	}
}
