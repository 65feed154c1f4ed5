package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"finapi/internal/domain"
	"finapi/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[opts.Key] = data
	s.types[opts.Key] = opts.ContentType
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (s *fakeStore) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (s *fakeStore) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://example.test/" + bucket + "/" + key + "?ttl=" + expires.String(), nil
}

func TestArchiveStoresSnapshot(t *testing.T) {
	f := newFixture(t)
	store := newFakeStore()
	logger, _ := test.NewNullLogger()
	svc := NewArchiveService(f.users, f.stmtSvc, store, ArchiveConfig{Bucket: "ledger", KeyPrefix: "/archives/"}, logger)

	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	_, _ = f.create(t, deposit(u1.ID, 100))
	_, _ = f.create(t, transfer(u1.ID, u2.ID, 40))

	archive, err := svc.Archive(context.Background(), u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(archive.Key, "archives/"+u1.ID+"/") || !strings.HasSuffix(archive.Key, ".json") {
		t.Fatalf("key=%q", archive.Key)
	}
	if !strings.Contains(archive.URL, archive.Key) || !strings.Contains(archive.URL, "ttl=15m0s") {
		t.Fatalf("url=%q", archive.URL)
	}
	if store.types[archive.Key] != "application/json" {
		t.Fatalf("content type=%q", store.types[archive.Key])
	}

	var doc struct {
		UserID     string `json:"user_id"`
		Balance    string `json:"balance"`
		Statements []struct {
			Type       string `json:"type"`
			ReceiverID string `json:"receiver_id"`
		} `json:"statements"`
	}
	if err := json.NewDecoder(bytes.NewReader(store.objects[archive.Key])).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.UserID != u1.ID || doc.Balance != "60" || len(doc.Statements) != 2 {
		t.Fatalf("doc=%+v", doc)
	}
	if doc.Statements[1].Type != "transfer" || doc.Statements[1].ReceiverID != u2.ID {
		t.Fatalf("transfer entry=%+v", doc.Statements[1])
	}

	list, err := svc.List(context.Background(), u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Key != archive.Key || list[0].URL == "" {
		t.Fatalf("list=%+v", list)
	}

	others, err := svc.List(context.Background(), u2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(others) != 0 {
		t.Fatalf("u2 should see no archives, got %+v", others)
	}
}

func TestArchiveUnknownUser(t *testing.T) {
	f := newFixture(t)
	svc := NewArchiveService(f.users, f.stmtSvc, newFakeStore(), ArchiveConfig{Bucket: "ledger"}, nil)

	if _, err := svc.Archive(context.Background(), "invalid"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("archive: want ErrUserNotFound, got %v", err)
	}
	if _, err := svc.List(context.Background(), "invalid"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("list: want ErrUserNotFound, got %v", err)
	}
}

func TestArchiveDisabledWithoutBucket(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "u1")
	svc := NewArchiveService(f.users, f.stmtSvc, nil, ArchiveConfig{}, nil)

	if _, err := svc.Archive(context.Background(), u.ID); !errors.Is(err, domain.ErrArchiveDisabled) {
		t.Fatalf("want ErrArchiveDisabled, got %v", err)
	}
	if _, err := svc.List(context.Background(), u.ID); !errors.Is(err, domain.ErrArchiveDisabled) {
		t.Fatalf("want ErrArchiveDisabled, got %v", err)
	}
}
