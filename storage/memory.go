package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/omardr777/ai-dashboard/models"
)

// MemoryStore is an in-process ObjectStore. It records call counts and can be
// told to fail specific operations, which makes it the test double for sync runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]map[string]models.ObjectInfo

	// FailCopy and FailDelete make Copy/Delete of the given source key fail.
	FailCopy   map[string]error
	FailDelete map[string]error
	FailExists map[string]error

	ExistsCalls int
	CopyCalls   int
	DeleteCalls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:    map[string]map[string]models.ObjectInfo{},
		FailCopy:   map[string]error{},
		FailDelete: map[string]error{},
		FailExists: map[string]error{},
	}
}

// Put adds an object.
func (m *MemoryStore) Put(bucket, key string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[bucket] == nil {
		m.objects[bucket] = map[string]models.ObjectInfo{}
	}
	m.objects[bucket][key] = models.ObjectInfo{Key: key, Size: size, LastModified: time.Now().UTC()}
}

// Has reports whether key is present without counting as a call.
func (m *MemoryStore) Has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket][key]
	return ok
}

// MutatingCalls is the number of Copy and Delete calls made so far.
func (m *MemoryStore) MutatingCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CopyCalls + m.DeleteCalls
}

func (m *MemoryStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExistsCalls++
	if err := m.FailExists[key]; err != nil {
		return false, &Error{Op: "headObject", Bucket: bucket, Key: key, Err: err}
	}
	_, ok := m.objects[bucket][key]
	return ok, nil
}

func (m *MemoryStore) Copy(_ context.Context, bucket, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CopyCalls++
	if err := m.FailCopy[srcKey]; err != nil {
		return &Error{Op: "copyObject", Bucket: bucket, Key: dstKey, Err: err}
	}
	obj, ok := m.objects[bucket][srcKey]
	if !ok {
		return &Error{Op: "copyObject", Bucket: bucket, Key: srcKey, Code: "NotFound", Err: ErrObjectNotFound}
	}
	obj.Key = dstKey
	m.objects[bucket][dstKey] = obj
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if err := m.FailDelete[key]; err != nil {
		return &Error{Op: "deleteObject", Bucket: bucket, Key: key, Err: err}
	}
	delete(m.objects[bucket], key)
	return nil
}

func (m *MemoryStore) List(_ context.Context, bucket, prefix string, maxKeys int32) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.objects[bucket]
	if !ok {
		return nil, &Error{Op: "listObjectsV2", Bucket: bucket, Code: "NoSuchBucket", Err: errors.New("bucket does not exist")}
	}

	base := ""
	if prefix != "" {
		base = strings.TrimSuffix(prefix, "/") + "/"
	}
	keys := make([]string, 0, len(objs))
	for k := range objs {
		if strings.HasPrefix(k, base) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	listing := &Listing{Folders: []string{}, Objects: []models.ObjectInfo{}}
	seen := map[string]bool{}
	count := int32(0)
	for _, k := range keys {
		if maxKeys > 0 && count >= maxKeys {
			listing.IsTruncated = true
			break
		}
		rest := strings.TrimPrefix(k, base)
		if i := strings.Index(rest, "/"); i >= 0 {
			folder := rest[:i]
			if !seen[folder] {
				seen[folder] = true
				listing.Folders = append(listing.Folders, folder)
				count++
			}
			continue
		}
		listing.Objects = append(listing.Objects, objs[k])
		count++
	}
	return listing, nil
}
