// loader.go - Load documents (.json or zipped .skbundle) and field values.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BundleExt is the extension of zipped document bundles.
const BundleExt = ".skbundle"

// DefaultCanvasSize is used when a document names neither a preset nor a size.
var DefaultCanvasSize = [2]float64{1080, 1080}

// Load reads a document from a .json file or a .skbundle archive. For bundles
// the archive is extracted to a temp directory and relative fileUrl values are
// resolved against it; the returned cleanup function removes that directory.
func Load(path string) (*Document, func(), error) {
	noop := func() {}

	if !strings.EqualFold(filepath.Ext(path), BundleExt) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, noop, fmt.Errorf("read document: %w", err)
		}
		doc, err := Parse(data)
		if err != nil {
			return nil, noop, err
		}
		resolveAssetPaths(doc, filepath.Dir(path))
		return doc, noop, nil
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "skbundle-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "document.json"))
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("read document.json: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	resolveAssetPaths(doc, tmpDir)

	return doc, cleanup, nil
}

// Parse decodes a document and applies load-time defaults.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	ApplyDefaults(&doc)
	return &doc, nil
}

// ApplyDefaults resolves the canvas preset and fills in missing canvas size
// and layer ids.
func ApplyDefaults(doc *Document) {
	if dims, ok := Presets[doc.Canvas.Preset]; ok {
		doc.Canvas.Width = dims[0]
		doc.Canvas.Height = dims[1]
	}
	if doc.Canvas.Width <= 0 {
		doc.Canvas.Width = DefaultCanvasSize[0]
	}
	if doc.Canvas.Height <= 0 {
		doc.Canvas.Height = DefaultCanvasSize[1]
	}

	for i := range doc.Layers {
		if doc.Layers[i].ID == "" {
			doc.Layers[i].ID = fmt.Sprintf("layer%d", i+1)
		}
	}
}

// LoadFields reads a fields JSON object. A malformed file is not fatal: it
// yields empty field values and a warning.
func LoadFields(path string) (FieldValues, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fields: %w", err)
	}
	fields, warnings := ParseFields(data)
	return fields, warnings, nil
}

// ParseFields decodes a fields JSON object, returning warnings for issues.
func ParseFields(data []byte) (FieldValues, []string) {
	var warnings []string

	fields := FieldValues{}
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		warnings = append(warnings, fmt.Sprintf("malformed fields: %v; using document values", err))
		return FieldValues{}, warnings
	}

	for key, v := range fields {
		switch v.(type) {
		case string, float64, bool, nil:
		case []any:
			if !strings.HasSuffix(key, "_colorStops") {
				warnings = append(warnings, fmt.Sprintf("field %q: arrays are only accepted for colorStops; ignored", key))
				delete(fields, key)
			}
		default:
			warnings = append(warnings, fmt.Sprintf("field %q: expected a primitive value; ignored", key))
			delete(fields, key)
		}
	}

	return fields, warnings
}

// resolveAssetPaths makes relative local fileUrl values absolute using baseDir.
func resolveAssetPaths(doc *Document, baseDir string) {
	for i := range doc.Layers {
		p := doc.Layers[i].FileURL
		if p == "" || filepath.IsAbs(p) || strings.Contains(p, ":") {
			continue
		}
		doc.Layers[i].FileURL = filepath.Join(baseDir, p)
	}
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.Reader, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip entry to disk.
func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// WriteBundle writes doc as document.json plus the given assets (archive
// name → bytes) into a .skbundle archive.
func WriteBundle(w io.Writer, doc *Document, assets map[string][]byte) error {
	zw := zip.NewWriter(w)

	dw, err := zw.Create("document.json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(dw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		aw, err := zw.Create("assets/" + filepath.Base(name))
		if err != nil {
			return err
		}
		if _, err := aw.Write(assets[name]); err != nil {
			return err
		}
	}

	return zw.Close()
}
