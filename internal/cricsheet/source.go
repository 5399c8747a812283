package cricsheet

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Record is one raw match record as delivered by the fetch collaborator:
// a single JSON document plus the name it was published under.
type Record struct {
	// Name is the record's file name (match_id fallback comes from its stem)
	Name string
	// Source is the path of the file or archive the record came from
	Source string
	// Data is the raw JSON document
	Data []byte
}

// Walk enumerates match records from the given paths and invokes fn for each.
// A path may be a .json file, a directory (scanned recursively for .json
// files), or a Cricsheet .zip archive. Records within a directory or archive
// are visited in name order so load order is deterministic. sampleLimit > 0
// caps how many records are taken from each directory or archive, matching
// the published sample bundles.
//
// An error from fn aborts the walk; unreadable paths abort it too, since a
// missing input is an operator mistake rather than a bad record.
func Walk(paths []string, sampleLimit int, fn func(Record) error) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		switch {
		case info.IsDir():
			if err := walkDir(p, sampleLimit, fn); err != nil {
				return err
			}
		case strings.EqualFold(filepath.Ext(p), ".zip"):
			if err := walkZip(p, sampleLimit, fn); err != nil {
				return err
			}
		default:
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			if err := fn(Record{Name: filepath.Base(p), Source: p, Data: data}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Collect is Walk buffered into a slice.
func Collect(paths []string, sampleLimit int) ([]Record, error) {
	var records []Record
	err := Walk(paths, sampleLimit, func(r Record) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func walkDir(dir string, sampleLimit int, fn func(Record) error) error {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	sort.Strings(names)
	if sampleLimit > 0 && len(names) > sampleLimit {
		names = names[:sampleLimit]
	}

	for _, path := range names {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := fn(Record{Name: filepath.Base(path), Source: path, Data: data}); err != nil {
			return err
		}
	}
	return nil
}

func walkZip(archive string, sampleLimit int, fn func(Record) error) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer func() { _ = zr.Close() }()

	var entries []*zip.File
	for _, f := range zr.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".json") {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	if sampleLimit > 0 && len(entries) > sampleLimit {
		entries = entries[:sampleLimit]
	}

	for _, f := range entries {
		data, err := readZipEntry(f)
		if err != nil {
			return fmt.Errorf("read %s from %s: %w", f.Name, archive, err)
		}
		if err := fn(Record{Name: filepath.Base(f.Name), Source: archive, Data: data}); err != nil {
			return err
		}
	}
	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
