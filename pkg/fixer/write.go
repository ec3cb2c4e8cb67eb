// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fixer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// maxSymlinkHops bounds link chains the same way the kernel does
const maxSymlinkHops = 40

// writeFile overwrites path with data. Symlinks are followed so the link
// stays a link and its target gets the new content. The target is replaced
// atomically when its directory allows a temp file, otherwise it is
// truncated and rewritten in place.
func writeFile(fs afero.Fs, path string, data []byte, mode os.FileMode) error {
	target, ok, err := resolveSymlinks(fs, path)
	if err != nil {
		return err
	}
	if !ok {
		// the link leaves the fs root; let the OS follow it
		return writeFileInPlace(fs, path, data)
	}

	err = writeFileAtomic(fs, target, data, mode)
	if errors.Is(err, os.ErrPermission) {
		return writeFileInPlace(fs, target, data)
	}
	return err
}

// resolveSymlinks follows relative symlinks inside fs. ok is false when a
// link is absolute or points outside fs, since those paths cannot be named
// through fs.
func resolveSymlinks(fs afero.Fs, path string) (string, bool, error) {
	lstater, canLstat := fs.(afero.Lstater)
	reader, canRead := fs.(afero.LinkReader)
	if !canLstat || !canRead {
		return path, true, nil
	}

	for range maxSymlinkHops {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			return "", false, errors.Errorf("lstat %s: %w", path, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return path, true, nil
		}

		link, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", false, errors.Errorf("readlink %s: %w", path, err)
		}
		if filepath.IsAbs(link) {
			return path, false, nil
		}
		next := filepath.Join(filepath.Dir(path), link)
		if next == ".." || strings.HasPrefix(next, ".."+string(filepath.Separator)) {
			return path, false, nil
		}
		path = next
	}

	return "", false, errors.Errorf("resolving %s: too many levels of symbolic links", path)
}

// writeFileInPlace truncates path and writes data through the existing file
func writeFileInPlace(fs afero.Fs, path string, data []byte) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Errorf("writing %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Errorf("syncing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", path, err)
	}

	return nil
}

// writeFileAtomic replaces path with data through a temp file in the same
// directory, keeping the given mode
func writeFileAtomic(fs afero.Fs, path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := afero.TempFile(fs, dir, ".logfix-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// no-op once the rename has happened
	defer fs.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.Errorf("syncing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := fs.Chmod(tmpPath, mode); err != nil {
		return errors.Errorf("setting mode on temp file: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temp file to %s: %w", path, err)
	}

	return nil
}
