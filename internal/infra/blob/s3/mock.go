package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const mockBucket = "mock-bucket"

var mockModified = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewMockForTests returns a Store backed by an in-memory fake HTTP transport.
// Only the operations the blob store issues are implemented.
func NewMockForTests() *Store {
	rt := &mockRoundTripper{objects: make(map[string]mockObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(defaultRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return newStore(client, mockBucket)
}

type mockRoundTripper struct {
	mu      sync.Mutex
	objects map[string]mockObject
}

type mockObject struct {
	body        []byte
	contentType string
	etag        string
	metadata    map[string]string
}

func mockResponse(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}

func (o mockObject) header() http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(o.body))},
		"Content-Type":   {o.contentType},
		"Etag":           {`"` + o.etag + `"`},
		"Last-Modified":  {mockModified.Format(http.TimeFormat)},
	}
	for k, v := range o.metadata {
		h.Set("X-Amz-Meta-"+k, v)
	}
	return h
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ""
	if parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2); len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return m.list(req.URL.Query().Get("prefix")), nil
	}
	obj, found := m.objects[key]
	switch req.Method {
	case http.MethodHead:
		if !found {
			return mockResponse(http.StatusNotFound, nil, nil), nil
		}
		return mockResponse(http.StatusOK, nil, obj.header()), nil
	case http.MethodGet:
		if !found {
			return mockResponse(http.StatusNotFound, nil, nil), nil
		}
		return mockResponse(http.StatusOK, obj.body, obj.header()), nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if decoded, ok := decodeChunked(body); ok {
			body = decoded
		}
		sum := sha256.Sum256(body)
		obj = mockObject{
			body:        body,
			contentType: req.Header.Get("Content-Type"),
			etag:        hex.EncodeToString(sum[:8]),
			metadata:    map[string]string{},
		}
		for name, values := range req.Header {
			if strings.HasPrefix(strings.ToLower(name), "x-amz-meta-") && len(values) > 0 {
				obj.metadata[strings.ToLower(strings.TrimPrefix(strings.ToLower(name), "x-amz-meta-"))] = values[0]
			}
		}
		m.objects[key] = obj
		return mockResponse(http.StatusOK, nil, http.Header{"Etag": {`"` + obj.etag + `"`}}), nil
	case http.MethodDelete:
		delete(m.objects, key)
		return mockResponse(http.StatusNoContent, nil, nil), nil
	}
	return mockResponse(http.StatusNotImplemented, nil, nil), nil
}

func (m *mockRoundTripper) list(prefix string) *http.Response {
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		obj := m.objects[k]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;%s&quot;</ETag><LastModified>%s</LastModified></Contents>",
			k, len(obj.body), obj.etag, mockModified.Format(time.RFC3339))
	}
	b.WriteString("</ListBucketResult>")
	return mockResponse(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

// decodeChunked unwraps a single-chunk aws-chunked payload:
// <hex size>\r\n<body>\r\n0\r\n<trailers>.
func decodeChunked(b []byte) ([]byte, bool) {
	head, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return nil, false
	}
	size, err := strconv.ParseInt(string(head), 16, 64)
	if err != nil || size < 0 || int64(len(rest)) < size+2 {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	if !bytes.HasPrefix(rest[size:], []byte("\r\n0")) {
		return nil, false
	}
	return rest[:size], true
}
