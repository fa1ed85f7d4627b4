package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"hazcat/internal/blob/core"
)

// fakeS3 answers the subset of the S3 REST API the adapter uses, keyed by
// path-style object key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	page    int
}

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: make(map[string]fakeObject)} }

func reply(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: header}
}

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return f.list(req), nil
	}
	switch req.Method {
	case http.MethodHead:
		obj, ok := f.objects[key]
		if !ok {
			return reply(http.StatusNotFound, "", nil), nil
		}
		return reply(http.StatusOK, "", f.headers(obj)), nil
	case http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			return reply(http.StatusNotFound, noSuchKey, http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(obj.body)), Header: f.headers(obj)}, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		md := map[string]string{}
		for h, v := range req.Header {
			if strings.HasPrefix(strings.ToLower(h), "x-amz-meta-") {
				md[strings.TrimPrefix(strings.ToLower(h), "x-amz-meta-")] = v[0]
			}
		}
		f.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type"), metadata: md}
		return reply(http.StatusOK, "", http.Header{"Etag": {`"etag"`}}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return reply(http.StatusNoContent, "", nil), nil
	}
	return reply(http.StatusNotImplemented, "", nil), nil
}

func (f *fakeS3) headers(obj fakeObject) http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(obj.body))},
		"Content-Type":   {obj.contentType},
		"Etag":           {`"etag123"`},
		"Last-Modified":  {time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Format(http.TimeFormat)},
	}
	for k, v := range obj.metadata {
		h.Set("X-Amz-Meta-"+k, v)
	}
	return h
}

// list returns one key per page to exercise continuation.
func (f *fakeS3) list(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if tok := req.URL.Query().Get("continuation-token"); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	f.page++
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	if start+1 < len(keys) {
		fmt.Fprintf(&b, "<IsTruncated>true</IsTruncated><NextContinuationToken>%d</NextContinuationToken>", start+1)
	} else {
		b.WriteString("<IsTruncated>false</IsTruncated>")
	}
	if start < len(keys) {
		k := keys[start]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;e&quot;</ETag><LastModified>2025-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k].body))
	}
	b.WriteString("</ListBucketResult>")
	return reply(http.StatusOK, b.String(), http.Header{"Content-Type": {"application/xml"}})
}

// decodeChunked unwraps a single-chunk aws-chunked body with optional trailers.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	store, err := New(context.Background(), Config{
		Bucket:          "hazcat-test",
		Endpoint:        "https://s3.mock.local",
		PathStyle:       true,
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	}, func(o *awsS3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, fake
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	if store.Driver() != core.DriverS3 || store.Bucket() != "hazcat-test" {
		t.Fatalf("unexpected driver/bucket %s %s", store.Driver(), store.Bucket())
	}

	info, err := store.Put(ctx, "reports/a/report.json", bytes.NewReader([]byte(`{"id":"a"}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"facility": "lab"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "reports/a/report.json" || info.Size != 10 || info.ETag != "etag123" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "reports/a/report.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := store.Get(ctx, "reports/a/report.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"id":"a"}` || got.ContentType != "application/json" {
		t.Fatalf("unexpected get %q %+v", body, got)
	}
	if got.Metadata["facility"] != "lab" {
		t.Fatalf("metadata not returned: %+v", got.Metadata)
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	if _, _, err := store.Get(ctx, "missing.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "missing.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	existed, err := store.Delete(ctx, "missing.csv")
	if err != nil || existed {
		t.Fatalf("delete missing: %v %v", existed, err)
	}
}

func TestStoreListPaginatesAndDelete(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	for _, k := range []string{"refdata/b.csv", "refdata/a.csv", "other/c.csv", "refdata/c.csv"} {
		if _, err := store.Put(ctx, k, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := store.List(ctx, "refdata/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Key != "refdata/a.csv" || infos[2].Key != "refdata/c.csv" {
		t.Fatalf("unexpected listing %+v", infos)
	}
	if fake.page < 3 {
		t.Fatalf("expected paginated listing, got %d pages", fake.page)
	}
	existed, err := store.Delete(ctx, "refdata/a.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	if _, err := store.Head(ctx, "refdata/a.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected deleted object to be gone: %v", err)
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	url, err := store.PresignURL(ctx, "reports/a/report.json", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "hazcat-test/reports/a/report.json") || !strings.Contains(url, "X-Amz-Expires=60") {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported for PUT, got %v", err)
	}
}
