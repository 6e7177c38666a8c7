package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/models"
)

// ---- fake catalog ----

// fakeCatalog is an in-memory storage.Catalog for unit tests. It records
// the call order and supports injecting failures per method.
type fakeCatalog struct {
	calls []string

	blobs          map[string][]byte
	putBlobCalls   int
	PutBlobErr     error
	FailPutBlobAt  int // 1-based call number PutBlobErr fires on; 0 = every call
	GetBlobErr     error
	DeleteBlobsErr error

	LastDeletedBlobIDs []string

	creds            map[string]*models.Credential
	PutCredentialErr error
	GetCredentialErr error

	files     map[string]*models.FileRecord
	fileOrder []string

	PutFileErr    error
	GetFileErr    error
	ListFilesErr  error
	DeleteFileErr error

	LastDeletedFileID string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		blobs: map[string][]byte{},
		creds: map[string]*models.Credential{},
		files: map[string]*models.FileRecord{},
	}
}

func (f *fakeCatalog) record(name string) {
	f.calls = append(f.calls, name)
}

// callIndex returns the position of the first call with the given name,
// or -1 if it never happened.
func (f *fakeCatalog) callIndex(name string) int {
	for i, c := range f.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func (f *fakeCatalog) PutBlob(ctx context.Context, id string, data []byte) error {
	f.record("PutBlob")
	f.putBlobCalls++
	if f.PutBlobErr != nil && (f.FailPutBlobAt == 0 || f.putBlobCalls == f.FailPutBlobAt) {
		return f.PutBlobErr
	}
	f.blobs[id] = append([]byte(nil), data...)
	return nil
}

func (f *fakeCatalog) GetBlob(ctx context.Context, id string) ([]byte, error) {
	f.record("GetBlob")
	if f.GetBlobErr != nil {
		return nil, f.GetBlobErr
	}
	data, ok := f.blobs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeCatalog) DeleteBlobs(ctx context.Context, ids []string) error {
	f.record("DeleteBlobs")
	if f.DeleteBlobsErr != nil {
		return f.DeleteBlobsErr
	}
	f.LastDeletedBlobIDs = append([]string(nil), ids...)
	for _, id := range ids {
		delete(f.blobs, id)
	}
	return nil
}

func (f *fakeCatalog) PutCredential(ctx context.Context, cred *models.Credential) error {
	f.record("PutCredential")
	if f.PutCredentialErr != nil {
		return f.PutCredentialErr
	}
	if _, ok := f.creds[cred.UserID]; ok {
		return common.ErrorAlreadyExists
	}
	c := *cred
	f.creds[cred.UserID] = &c
	return nil
}

func (f *fakeCatalog) GetCredential(ctx context.Context, userID string) (*models.Credential, error) {
	f.record("GetCredential")
	if f.GetCredentialErr != nil {
		return nil, f.GetCredentialErr
	}
	cred, ok := f.creds[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *cred
	return &c, nil
}

func (f *fakeCatalog) PutFile(ctx context.Context, rec *models.FileRecord) error {
	f.record("PutFile")
	if f.PutFileErr != nil {
		return f.PutFileErr
	}
	if _, ok := f.files[rec.ID]; !ok {
		f.fileOrder = append(f.fileOrder, rec.ID)
	}
	r := *rec
	f.files[rec.ID] = &r
	return nil
}

func (f *fakeCatalog) GetFile(ctx context.Context, id string) (*models.FileRecord, error) {
	f.record("GetFile")
	if f.GetFileErr != nil {
		return nil, f.GetFileErr
	}
	rec, ok := f.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	r := *rec
	return &r, nil
}

func (f *fakeCatalog) ListFiles(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	f.record("ListFiles")
	if f.ListFilesErr != nil {
		return nil, f.ListFilesErr
	}
	var result []*models.FileRecord
	for _, id := range f.fileOrder {
		rec := f.files[id]
		if rec != nil && rec.OwnerID == ownerID {
			r := *rec
			result = append(result, &r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeCatalog) DeleteFile(ctx context.Context, id string) error {
	f.record("DeleteFile")
	if f.DeleteFileErr != nil {
		return f.DeleteFileErr
	}
	if _, ok := f.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.files, id)
	f.LastDeletedFileID = id
	return nil
}

func (f *fakeCatalog) Close() error {
	f.record("Close")
	return nil
}
