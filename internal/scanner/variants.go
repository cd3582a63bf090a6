package scanner

import (
	"path"
	"strings"

	"github.com/hightail/wilson-sub000/internal/component"
)

// ParseVariant reads `<owner>.<q1>.<q2><ext>` from the base name of templatePath. Files whose
// first name segment is not owner are not variants of owner.
func ParseVariant(owner, templatePath, ext string) (component.TemplateVariant, bool) {
	base := path.Base(templatePath)
	if !strings.HasSuffix(base, ext) {
		return component.TemplateVariant{}, false
	}

	parts := strings.Split(strings.TrimSuffix(base, ext), ".")
	if parts[0] != owner {
		return component.TemplateVariant{}, false
	}

	qualities := make([]string, 0, len(parts)-1)

	for _, quality := range parts[1:] {
		if quality != "" {
			qualities = append(qualities, quality)
		}
	}

	return component.TemplateVariant{Owner: owner, Qualities: qualities, Path: templatePath}, true
}

// Variants returns the template variants of entity, in artifact order.
func Variants(entity *component.Entity, ext string) []component.TemplateVariant {
	var variants []component.TemplateVariant

	for _, templatePath := range entity.Paths(component.ArtifactTemplate) {
		if variant, ok := ParseVariant(entity.ID, templatePath, ext); ok {
			variants = append(variants, variant)
		}
	}

	return variants
}
