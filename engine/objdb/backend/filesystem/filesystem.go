package objstorefilesystem

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goelko/engine/consts"
	"github.com/xiaonanln/goelko/engine/gwlog"
	. "github.com/xiaonanln/goelko/engine/objdb/objdb_common"
)

const fileSuffix = ".json"

// FileSystemObjectStore stores every object in its own file
type FileSystemObjectStore struct {
	directory string
}

func (fs *FileSystemObjectStore) getFilePath(ref string) string {
	return filepath.Join(fs.directory, ref+fileSuffix)
}

// Get reads the object file of ref
func (fs *FileSystemObjectStore) Get(ref string) (string, error) {
	if err := CheckRef(ref); err != nil {
		return "", err
	}
	data, err := ioutil.ReadFile(fs.getFilePath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Put writes the object file of ref
func (fs *FileSystemObjectStore) Put(ref string, text string, requireNew bool) error {
	if err := CheckRef(ref); err != nil {
		return err
	}
	saveFile := fs.getFilePath(ref)
	if consts.DEBUG_SAVE_LOAD {
		gwlog.Debugf("Saving to file %s: %s", saveFile, text)
	}

	if requireNew {
		f, err := os.OpenFile(saveFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if os.IsExist(err) {
				return errors.Wrapf(ErrExists, "%s", ref)
			}
			return err
		}
		_, err = f.WriteString(text)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		return err
	}

	// write to a temp file and rename, so readers never see a partial object
	tmp, err := ioutil.TempFile(fs.directory, ref+".*.tmp")
	if err != nil {
		return err
	}
	_, err = tmp.WriteString(text)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), saveFile)
	}
	if err != nil {
		os.Remove(tmp.Name())
	}
	return err
}

// Remove deletes the object file of ref. Removing a missing object is not an error.
func (fs *FileSystemObjectStore) Remove(ref string) error {
	if err := CheckRef(ref); err != nil {
		return err
	}
	err := os.Remove(fs.getFilePath(ref))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the refs of all stored objects, sorted
func (fs *FileSystemObjectStore) List() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(fs.directory, "*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(files))
	for _, fpath := range files {
		_, fn := filepath.Split(fpath)
		ref := strings.TrimSuffix(fn, fileSuffix)
		if CheckRef(ref) != nil {
			gwlog.Errorf("invalid file: %s", fpath)
			continue
		}
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

// Close does nothing for the filesystem
func (fs *FileSystemObjectStore) Close() {
}

// IsEOF is always false for the filesystem
func (fs *FileSystemObjectStore) IsEOF(err error) bool {
	return false
}

// OpenDirectory opens a directory as object store, creating it if needed
func OpenDirectory(directory string) (ObjectStore, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrapf(err, "open object directory %s", directory)
	}

	return &FileSystemObjectStore{
		directory: directory,
	}, nil
}
