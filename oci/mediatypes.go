// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"encoding/json"
	"fmt"
)

// ArtifactTypeSkill identifies skill artifacts in manifests.
const ArtifactTypeSkill = "dev.skillpkg.skill.v1"

// MediaTypeSkillConfig is the media type of the skill config blob.
// The config blob is a JSON-encoded SkillDescriptor.
const MediaTypeSkillConfig = "application/vnd.skillpkg.skill.config.v1+json"

// Annotation keys for skill metadata in manifests.
const (
	// AnnotationSkillName is the annotation key for the skill name.
	AnnotationSkillName = "dev.skillpkg.skill.name"

	// AnnotationSkillDescription is the annotation key for the skill description.
	AnnotationSkillDescription = "dev.skillpkg.skill.description"

	// AnnotationSkillVersion is the annotation key for the skill version.
	AnnotationSkillVersion = "dev.skillpkg.skill.version"

	// AnnotationSkillRequires is the annotation key for skill dependencies
	// (JSON array of source locators).
	AnnotationSkillRequires = "dev.skillpkg.skill.requires"

	// AnnotationSkillTools is the annotation key for required external tools
	// (JSON array of tool names).
	AnnotationSkillTools = "dev.skillpkg.skill.tools"
)

// SkillDescriptor is skill metadata carried by an OCI artifact, both as
// manifest annotations and as the JSON config blob.
type SkillDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`

	// Requires are source locators of skills this skill depends on.
	Requires []string `json:"requires,omitempty"`

	// Tools are external tool names this skill depends on.
	Tools []string `json:"tools,omitempty"`
}

// SkillDescriptorFromAnnotations extracts a SkillDescriptor from OCI
// manifest annotations. The name annotation is required.
func SkillDescriptorFromAnnotations(annotations map[string]string) (*SkillDescriptor, error) {
	if annotations == nil {
		return nil, fmt.Errorf("manifest has no annotations")
	}

	desc := &SkillDescriptor{
		Name:        annotations[AnnotationSkillName],
		Description: annotations[AnnotationSkillDescription],
		Version:     annotations[AnnotationSkillVersion],
		Requires:    parseStringListAnnotation(annotations, AnnotationSkillRequires),
		Tools:       parseStringListAnnotation(annotations, AnnotationSkillTools),
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("skill name annotation is required")
	}
	return desc, nil
}

// SkillDescriptorFromConfig parses a SkillDescriptor from a config blob.
func SkillDescriptorFromConfig(data []byte) (*SkillDescriptor, error) {
	var desc SkillDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing skill config: %w", err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("skill config missing name")
	}
	return &desc, nil
}

// Annotations renders the descriptor as OCI manifest annotations.
func (d *SkillDescriptor) Annotations() map[string]string {
	annotations := map[string]string{
		AnnotationSkillName: d.Name,
	}
	if d.Description != "" {
		annotations[AnnotationSkillDescription] = d.Description
	}
	if d.Version != "" {
		annotations[AnnotationSkillVersion] = d.Version
	}
	if len(d.Requires) > 0 {
		if encoded, err := json.Marshal(d.Requires); err == nil {
			annotations[AnnotationSkillRequires] = string(encoded)
		}
	}
	if len(d.Tools) > 0 {
		if encoded, err := json.Marshal(d.Tools); err == nil {
			annotations[AnnotationSkillTools] = string(encoded)
		}
	}
	return annotations
}

// parseStringListAnnotation parses a JSON string array annotation.
// Returns nil if the annotation is missing or invalid: annotations may come
// from older versions or external publishers.
func parseStringListAnnotation(annotations map[string]string, key string) []string {
	raw := annotations[key]
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}
