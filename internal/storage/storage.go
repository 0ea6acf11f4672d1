package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRemoteLocation marks reads of object-store locations: callers must
	// deep-link to the object store instead of downloading through here.
	ErrRemoteLocation = errors.New("location is stored remotely")
	ErrFileMissing    = errors.New("audio file not found")
)

// RemoteStore is one object-store backend. Owns reports whether a location
// string belongs to this backend (prefix dispatch).
type RemoteStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
	Remove(ctx context.Context, location string) error
	Owns(location string) bool
}

// BlobStore saves and deletes raw audio bytes, remote-first with a local
// filesystem fallback, and reads back locally stored files.
type BlobStore interface {
	Save(ctx context.Context, data []byte, fileName, candidateID string) (string, error)
	Delete(ctx context.Context, location string) bool
	Read(ctx context.Context, location string) ([]byte, error)
}

const remoteKeyPrefix = "audio_responses/"

type Store struct {
	remote   RemoteStore // nil when only local storage is configured
	localDir string
	log      *logrus.Logger
}

func NewStore(remote RemoteStore, localDir string, log *logrus.Logger) (*Store, error) {
	if localDir == "" {
		localDir = "/tmp/audio_responses"
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	return &Store{remote: remote, localDir: localDir, log: log}, nil
}

// IsRemote reports whether a location string is an object-store locator.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "s3://") || strings.HasPrefix(location, "gs://")
}

// uniqueName builds a collision-resistant storage name. The client-supplied
// file name is never reused as-is; only its extension survives.
func uniqueName(fileName, candidateID string) string {
	ext := filepath.Ext(fileName)
	return candidateID + "_" + uuid.NewString() + ext
}

func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Save tries the remote backend first; any remote failure is logged and falls
// back to the local directory without surfacing the error.
func (s *Store) Save(ctx context.Context, data []byte, fileName, candidateID string) (string, error) {
	name := uniqueName(fileName, candidateID)

	if s.remote != nil {
		loc, err := s.remote.Put(ctx, remoteKeyPrefix+name, data, contentTypeFor(fileName))
		if err == nil {
			return loc, nil
		}
		s.log.WithError(err).WithField("file", name).
			Warn("remote upload failed, falling back to local storage")
	}

	path := filepath.Join(s.localDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write local audio file: %w", err)
	}
	return path, nil
}

// Delete dispatches on the location prefix. An already absent file counts as
// success so delete stays idempotent; real failures are logged, not raised.
func (s *Store) Delete(ctx context.Context, location string) bool {
	if IsRemote(location) {
		if s.remote == nil || !s.remote.Owns(location) {
			s.log.WithField("location", location).
				Warn("no configured backend for remote location, skipping delete")
			return false
		}
		if err := s.remote.Remove(ctx, location); err != nil {
			s.log.WithError(err).WithField("location", location).Warn("remote delete failed")
			return false
		}
		return true
	}

	if err := os.Remove(location); err != nil {
		if os.IsNotExist(err) {
			return true
		}
		s.log.WithError(err).WithField("location", location).Warn("local delete failed")
		return false
	}
	return true
}

// Read returns the bytes behind a local location. Remote locations are not
// fetched here.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	if IsRemote(location) {
		return nil, ErrRemoteLocation
	}
	data, err := os.ReadFile(location)
	if os.IsNotExist(err) {
		return nil, ErrFileMissing
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
