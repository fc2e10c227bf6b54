package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// atomicWriteFile writes data to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// writeJSONFile marshals v with indentation and writes it atomically.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", filepath.Base(path), err)
	}
	return atomicWriteFile(path, append(data, '\n'))
}

// readJSONFile unmarshals path into v. Missing files are reported through
// os.IsNotExist on the returned error.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
