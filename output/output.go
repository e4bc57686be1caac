// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output persists the artifacts of a selection run: a ROOT file of
// histograms, PNG renders, the cutflow text report, a JSON summary and a
// Prometheus metrics textfile.
//
// Artifacts are written through a gocloud.dev blob bucket, so the output
// location may be a local directory or any bucket URL the binary links.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob" // mem:// buckets.
)

// OutputError reports an artifact that could not be written. Results
// computed before the failure are unaffected.
type OutputError struct {
	Key string // The artifact's key within the store.
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("output: writing %q: %v", e.Key, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Store writes artifacts under keys of a bucket.
type Store struct {
	bucket *blob.Bucket
	where  string
}

// Open opens the artifact store at loc. A loc containing "://" is a bucket
// URL; anything else is a local directory, created if missing.
func Open(ctx context.Context, loc string) (*Store, error) {
	if strings.Contains(loc, "://") {
		b, err := blob.OpenBucket(ctx, loc)
		if err != nil {
			return nil, &OutputError{Err: errors.Wrapf(err, "opening bucket %s", loc)}
		}
		return &Store{bucket: b, where: loc}, nil
	}
	b, err := fileblob.OpenBucket(loc, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, &OutputError{Err: errors.Wrapf(err, "opening directory %s", loc)}
	}
	return &Store{bucket: b, where: loc}, nil
}

// Bucket returns the underlying bucket.
func (s *Store) Bucket() *blob.Bucket { return s.bucket }

// Location returns where the store writes, for logs.
func (s *Store) Location() string { return s.where }

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// Write stores the bytes produced by src under key. A failed write leaves
// no partial artifact behind.
func (s *Store) Write(ctx context.Context, key, contentType string, src io.WriterTo) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return &OutputError{Key: key, Err: err}
	}
	if _, err := src.WriteTo(w); err != nil {
		cancel() // Aborts the upload.
		w.Close()
		return &OutputError{Key: key, Err: err}
	}
	if err := w.Close(); err != nil {
		return &OutputError{Key: key, Err: err}
	}
	return nil
}

// writeFile uploads a local file under key.
func (s *Store) writeFile(ctx context.Context, key, contentType, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &OutputError{Key: key, Err: err}
	}
	defer f.Close()
	return s.Write(ctx, key, contentType, readerTo{f})
}

// readerTo adapts a reader to io.WriterTo.
type readerTo struct{ io.Reader }

func (r readerTo) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, r.Reader)
}

// tempFile returns a path for a scratch file, and a cleanup for it.
func tempFile(pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	f.Close()
	return path, func() { os.Remove(path) }, nil
}
