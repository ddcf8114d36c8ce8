// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stacklok/skillpkg/logger"
)

// RegistrySchemaVersion identifies the store registry document format.
const RegistrySchemaVersion = "skillpkg-registry-v1"

const registryFileName = "registry.json"

//go:embed data/registry.schema.json
var embeddedSchemaFS embed.FS

// RegistryEntry is the store's own metadata for one physical skill. It is
// separate from the installation ledger: the registry describes what is on
// disk, the ledger describes why it is there.
type RegistryEntry struct {
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	InstalledAt time.Time `json:"installedAt"`
}

// Registry is the store's persisted metadata document.
type Registry struct {
	SchemaVersion string                    `json:"schemaVersion"`
	Skills        map[string]*RegistryEntry `json:"skills"`

	// Recovered is true when LoadRegistry discarded an unreadable document.
	Recovered bool `json:"-"`
}

// NewRegistry returns an empty registry at the current schema version.
func NewRegistry() *Registry {
	return &Registry{
		SchemaVersion: RegistrySchemaVersion,
		Skills:        make(map[string]*RegistryEntry),
	}
}

func (s *Store) registryPath() string {
	return filepath.Join(s.root, registryFileName)
}

// LoadRegistry returns the store registry. Like the ledger, a missing,
// unreadable, or unrecognized-schema document degrades to an empty registry
// with the Recovered flag set for anything but plain absence.
func (s *Store) LoadRegistry() *Registry {
	data, err := os.ReadFile(s.registryPath())
	if err != nil {
		reg := NewRegistry()
		if !os.IsNotExist(err) {
			logger.Warnf("discarding unreadable registry at %s: %v", s.registryPath(), err)
			reg.Recovered = true
		}
		return reg
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil || reg.SchemaVersion != RegistrySchemaVersion {
		logger.Warnf("discarding corrupt registry at %s", s.registryPath())
		recovered := NewRegistry()
		recovered.Recovered = true
		return recovered
	}
	if reg.Skills == nil {
		reg.Skills = make(map[string]*RegistryEntry)
	}
	return &reg
}

// SaveRegistry validates the registry against its schema and persists it
// atomically (temp file + rename, same guarantee as the ledger).
func (s *Store) SaveRegistry(reg *Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing registry: %w", err)
	}
	data = append(data, '\n')

	if err := ValidateRegistryBytes(data); err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("creating store root: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("creating temp registry file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp registry file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting registry permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.registryPath()); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}

// ValidateRegistryBytes validates raw registry JSON against the embedded
// registry schema.
func ValidateRegistryBytes(data []byte) error {
	schemaData, err := embeddedSchemaFS.ReadFile("data/registry.schema.json")
	if err != nil {
		return fmt.Errorf("reading embedded registry schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("registry schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("registry schema validation failed: %s", strings.Join(msgs, "; "))
}

// CleanOrphanRegistryEntries removes registry entries that have no physical
// skill on disk. Returns the removed names.
func (s *Store) CleanOrphanRegistryEntries() ([]string, error) {
	diskNames, err := s.ListSkillNames()
	if err != nil {
		return nil, err
	}
	diskSet := make(map[string]bool, len(diskNames))
	for _, n := range diskNames {
		diskSet[n] = true
	}

	reg := s.LoadRegistry()
	var removed []string
	for name := range reg.Skills {
		if !diskSet[name] {
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	slices.Sort(removed)
	for _, name := range removed {
		delete(reg.Skills, name)
	}
	if err := s.SaveRegistry(reg); err != nil {
		return nil, err
	}
	return removed, nil
}
