// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"
)

// MaxLayerFileSize is the maximum size of a single file extracted from a
// skill layer (100MB). This prevents decompression bombs.
const MaxLayerFileSize int64 = 100 * 1024 * 1024

// maxDecompressedSize is the maximum total size of a decompressed layer (100MB).
const maxDecompressedSize int64 = 100 * 1024 * 1024

// gzipOSUnknown is the OS value for "unknown" in gzip headers (RFC 1952).
// Using this value ensures cross-platform reproducibility.
const gzipOSUnknown = 255

// FileEntry is a single file carried in a skill content layer.
type FileEntry struct {
	Path    string // path within the layer
	Content []byte
	Mode    int64 // defaults to 0644
}

// PackLayer creates a reproducible .tar.gz skill content layer.
// Files are sorted by path and all headers use the given epoch so the
// same inputs always produce the same bytes.
func PackLayer(files []FileEntry, epoch time.Time) ([]byte, error) {
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}

	sorted := make([]FileEntry, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	for _, f := range sorted {
		mode := f.Mode
		if mode == 0 {
			mode = 0644
		}

		hdr := &tar.Header{
			Name:     f.Path,
			Size:     int64(len(f.Content)),
			Mode:     mode,
			ModTime:  epoch,
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header for %s: %w", f.Path, err)
		}
		if _, err := tw.Write(f.Content); err != nil {
			return nil, fmt.Errorf("writing tar content for %s: %w", f.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}

	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}

	// Explicit header fields for reproducibility
	gw.ModTime = epoch
	gw.Name = ""
	gw.Comment = ""
	gw.OS = gzipOSUnknown

	if _, err := gw.Write(tarBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// UnpackLayer extracts files from a .tar.gz skill content layer.
// It rejects symlinks, hardlinks, device entries, and paths containing
// traversal sequences, and enforces size limits on both the decompressed
// stream and individual files.
func UnpackLayer(data []byte) ([]FileEntry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	limited := io.LimitReader(gr, maxDecompressedSize+1)
	tarData, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("decompressing layer: %w", err)
	}
	if int64(len(tarData)) > maxDecompressedSize {
		return nil, fmt.Errorf("decompressed layer exceeds maximum size of %d bytes", maxDecompressedSize)
	}

	tr := tar.NewReader(bytes.NewReader(tarData))
	var files []FileEntry

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}

		if err := validateLayerPath(hdr.Name); err != nil {
			return nil, err
		}

		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			return nil, fmt.Errorf("layer contains disallowed link type: %s", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("layer contains disallowed entry type %d: %s", hdr.Typeflag, hdr.Name)
		}

		if hdr.Size > MaxLayerFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, MaxLayerFileSize)
		}

		limitedReader := io.LimitReader(tr, MaxLayerFileSize+1)
		content, err := io.ReadAll(limitedReader)
		if err != nil {
			return nil, fmt.Errorf("reading tar content for %s: %w", hdr.Name, err)
		}
		if int64(len(content)) > MaxLayerFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, MaxLayerFileSize)
		}

		files = append(files, FileEntry{
			Path:    hdr.Name,
			Content: content,
			Mode:    hdr.Mode,
		})
	}

	return files, nil
}

// validateLayerPath checks that a tar entry path is safe.
func validateLayerPath(p string) error {
	// path.Clean resolves all ".." segments; any remaining leading ".."
	// means the path escapes the layer root.
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("path traversal detected in layer: %s", p)
	}
	if path.IsAbs(cleaned) {
		return fmt.Errorf("absolute path not allowed in layer: %s", p)
	}
	return nil
}
