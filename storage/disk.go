package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type DiskStorage struct {
	Bucket Bucket
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(bucket *Bucket) *DiskStorage {
	return &DiskStorage{
		BasePath: bucket.Path,
		Bucket:   *bucket,
		dirs:     make(map[string]bool, 10),
	}
}

func (s *DiskStorage) GetBucket() *Bucket {
	return &s.Bucket
}

func (s *DiskStorage) URL(path string) string {
	return s.Bucket.URL(path)
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

// getFullPath refuses keys that would escape BasePath
func (s *DiskStorage) getFullPath(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fs.ErrInvalid
	}
	return filepath.Join(s.BasePath, clean), nil
}

func (s *DiskStorage) Check(ctx context.Context) error {
	return s.createDir(s.BasePath)
}

func (s *DiskStorage) Save(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return err
	}
	if err = s.createDir(filepath.Dir(fileName)); err != nil {
		return err
	}
	// Write next to the target and rename, so readers never see a partial blob
	file, err := os.CreateTemp(filepath.Dir(fileName), ".upload-*")
	if err != nil {
		return err
	}
	_, err = io.Copy(file, contextReader{ctx, reader})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(file.Name(), fileName)
	}
	if err != nil {
		os.Remove(file.Name())
	}
	return err
}

func (s *DiskStorage) Load(ctx context.Context, path string, writer io.Writer) (int64, error) {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return 0, err
	}
	file, err := os.Open(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return io.Copy(writer, contextReader{ctx, file})
}

// Delete of a missing file succeeds, like S3 DeleteObject
func (s *DiskStorage) Delete(ctx context.Context, path string) error {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return err
	}
	if err = os.Remove(fileName); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *DiskStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	result := []ObjectInfo{}
	root := filepath.Clean(s.BasePath)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		result = append(result, ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	return result, err
}

// Serve writes the blob at path, used by the /files route
func (s *DiskStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	fileName, err := s.getFullPath(path)
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	http.ServeFile(writer, request, fileName)
}

func (s *DiskStorage) GetFreeSpace() uint64 {
	return freeSpace(s.BasePath)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
