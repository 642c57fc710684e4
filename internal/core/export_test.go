package core

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mendel/internal/blob"
	"mendel/pkg/genetics"
)

func readBlob(t *testing.T, store blob.Store, key string) []byte {
	t.Helper()
	_, rc, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	return body
}

func TestExportJSON(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	svc := newTestService(t, WithBlobStore(store), WithKeyGenerator(func() string { return "fixed" }))
	session, err := svc.CreateSession(ctx, "mono")
	require.NoError(t, err)
	_, err = svc.SubmitCross(ctx, session.ID, "Aa", "Aa")
	require.NoError(t, err)

	res, err := svc.Export(ctx, session.ID, "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, res.Format)
	assert.Equal(t, "exports/"+session.ID+"/fixed.json", res.Blob.Key)
	assert.Equal(t, "application/json", res.Blob.ContentType)
	assert.Empty(t, res.Blob.URL)

	var doc ExportDocument
	require.NoError(t, json.Unmarshal(readBlob(t, store, res.Blob.Key), &doc))
	assert.Equal(t, "Aa", doc.Cross.Parent1)
	assert.Len(t, doc.Cross.Genotypes, 3)
	assert.Equal(t, genetics.Complete, doc.Inheritance[genetics.GeneID('a')].Type)
}

func TestExportCSVPresigned(t *testing.T) {
	ctx := context.Background()
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	svc := newTestService(t, WithBlobStore(store))
	session, err := svc.CreateSession(ctx, "poly")
	require.NoError(t, err)
	_, err = svc.SubmitCross(ctx, session.ID, "AaBb", "aaBb")
	require.NoError(t, err)

	res, err := svc.Export(ctx, session.ID, "CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, res.Format)
	assert.True(t, strings.HasPrefix(res.Blob.URL, "file://"))
	assert.True(t, strings.HasSuffix(res.Blob.Key, ".csv"))

	body := string(readBlob(t, store, res.Blob.Key))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Equal(t, "section,group,key,count,total,percentage", lines[0])
	assert.Contains(t, body, "record,1. Aa × aa,Aa,1,2,50")
	assert.Contains(t, body, "record,2. Bb × Bb,BB,1,4,25")
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, err := svc.CreateSession(ctx, "mono")
	require.NoError(t, err)

	_, err = svc.Export(ctx, session.ID, "json")
	assert.ErrorIs(t, err, ErrNoActiveCross)

	_, err = svc.Export(ctx, session.ID, "xlsx")
	var invalid ErrInvalidInput
	assert.ErrorAs(t, err, &invalid)
}

func TestParseExportFormat(t *testing.T) {
	f, ok := ParseExportFormat(" Json ")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)
	_, ok = ParseExportFormat("pdf")
	assert.False(t, ok)
}
