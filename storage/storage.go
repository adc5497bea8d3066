// Package storage keeps case documents in a private GridFS bucket and hands out
// short-lived signed links to them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BucketName is the GridFS bucket holding case documents
const BucketName = "case-documents"

var (
	// ErrObjectExists is returned when an upload would overwrite a stored object
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned when no object is stored under a name
	ErrObjectNotFound = errors.New("object not found")
)

// Object is an opened stored file
type Object struct {
	io.ReadCloser
	Name        string
	ContentType string
	Length      int64
}

// Store reads and writes named objects
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	Upload(ctx context.Context, name string, r io.Reader, contentType string) error
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName builds the stored name of a document attached to a case:
// <caseId>/<random>.<ext of the uploaded file>
func ObjectName(caseID, filename string) string {
	name := caseID + "/" + uuid.New().String()
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		name += ext
	}
	return name
}

// GridFSStore is a Store backed by a GridFS bucket
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore wraps bucket
func NewGridFSStore(bucket *gridfs.Bucket) *GridFSStore {
	return &GridFSStore{bucket: bucket}
}

// Exists reports whether an object is stored under name
func (s *GridFSStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.bucket.GetFilesCollection().CountDocuments(ctx, bson.M{"filename": name})
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	return n > 0, nil
}

// Upload stores r under name. It never replaces an existing object.
func (s *GridFSStore) Upload(ctx context.Context, name string, r io.Reader, contentType string) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", name, ErrObjectExists)
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return fmt.Errorf("failed to open upload stream for %s: %w", name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err = io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err = stream.Close(); err != nil {
		return fmt.Errorf("failed to finish upload of %s: %w", name, err)
	}
	return nil
}

// Open returns a reader over the object stored under name
func (s *GridFSStore) Open(ctx context.Context, name string) (*Object, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	obj := &Object{ReadCloser: stream, Name: name, ContentType: "application/octet-stream"}
	if file := stream.GetFile(); file != nil {
		obj.Length = file.Length
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			obj.ContentType = ct
		}
	}
	return obj, nil
}

// Delete removes the object stored under name. A missing object is not an error.
func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	var file struct {
		ID interface{} `bson:"_id"`
	}
	err := s.bucket.GetFilesCollection().FindOne(ctx, bson.M{"filename": name}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if err = s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Service joins a Store with a Signer so stored paths can be turned into links
type Service struct {
	Store  Store
	Signer *Signer
}

// SignedURL returns a link to the object stored at path, valid for ttl. It fails when
// nothing is stored there.
func (s *Service) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	exists, err := s.Store.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%s: %w", path, ErrObjectNotFound)
	}
	return s.Signer.SignedURL(path, ttl)
}

// Resolve verifies a signed link token and opens the object it grants access to
func (s *Service) Resolve(ctx context.Context, token string) (*Object, error) {
	name, err := s.Signer.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.Store.Open(ctx, name)
}
