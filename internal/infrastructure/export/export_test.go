package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/TuanThanh1609/leparfurm/internal/domain"
)

func sampleCatalog() []domain.CanonicalProduct {
	return []domain.CanonicalProduct{
		{
			ID:          "rose-eau",
			Title:       "Rose Eau",
			Brand:       "Maison Hồng",
			Price:       1200000,
			Image:       "https://cdn.example.com/rose.jpg",
			Link:        "https://shop.example.com/rose-eau",
			Description: "Nhóm hương: Hoa, Gỗ. Xuất xứ: Pháp.",
			Attributes: domain.Attributes{
				Origin: "Pháp",
				Tags:   []string{"Hoa", "Gỗ"},
			},
			Provenance: domain.ProvenanceCSV,
		},
		{
			ID:         "oud-noir",
			Title:      "Oud Noir",
			Brand:      "Tom Ford",
			Price:      5200000,
			Attributes: domain.Attributes{Tags: []string{}},
			Provenance: domain.ProvenanceXML,
		},
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), tempFilePrefix), "leftover temp file %s", e.Name())
	}
}

func TestEncodeCatalog(t *testing.T) {
	t.Run("empty catalog encodes as array", func(t *testing.T) {
		data, err := EncodeCatalog(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))
	})

	t.Run("keeps Vietnamese text unescaped", func(t *testing.T) {
		data, err := EncodeCatalog(sampleCatalog())
		require.NoError(t, err)
		assert.Contains(t, string(data), "Maison Hồng")
		assert.Contains(t, string(data), `"tags": [`)
	})
}

func TestJSONWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "products.json")
	w := NewJSONWriter(path)

	require.NoError(t, w.Write(context.Background(), sampleCatalog()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []domain.CanonicalProduct
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "rose-eau", got[0].ID)
	assert.Equal(t, []string{"Hoa", "Gỗ"}, got[0].Tags)
	assert.Equal(t, int64(5200000), got[1].Price)
	assertNoTempFiles(t, filepath.Dir(path))

	// A second write replaces the artifact in place
	require.NoError(t, w.Write(context.Background(), sampleCatalog()[:1]))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 1)
}

func TestJSONWriter_CanceledLeavesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"old"}]`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJSONWriter(path).Write(ctx, sampleCatalog())
	assert.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"old"}]`, string(data))
}

func TestXLSXWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.xlsx")
	w := NewXLSXWriter(path)
	assert.Equal(t, "xlsx:"+path, w.Name())

	require.NoError(t, w.Write(context.Background(), sampleCatalog()))
	assertNoTempFiles(t, dir)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(catalogSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "rose-eau", rows[1][0])
	assert.Equal(t, "1200000", rows[1][3])
	assert.Equal(t, "Hoa, Gỗ", rows[1][13])
	assert.Equal(t, "Tom Ford", rows[2][2])
}

func TestXLSXWriter_FailedBuildLeavesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewXLSXWriter(path).Write(ctx, sampleCatalog())
	assert.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assertNoTempFiles(t, dir)
}

func TestSQLiteWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.sqlite")
	w := NewSQLiteWriter(path)

	require.NoError(t, w.Write(context.Background(), sampleCatalog()))
	// Rewriting replaces the database rather than appending to it
	require.NoError(t, w.Write(context.Background(), sampleCatalog()))
	assertNoTempFiles(t, dir)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count))
	assert.Equal(t, 2, count)

	var title, tags string
	var price int64
	require.NoError(t, db.QueryRow(`SELECT title, price, tags FROM products WHERE id = ?`, "rose-eau").Scan(&title, &price, &tags))
	assert.Equal(t, "Rose Eau", title)
	assert.Equal(t, int64(1200000), price)
	assert.Equal(t, "Hoa, Gỗ", tags)
}

func TestSQLiteWriter_DuplicateIDFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	products := append(sampleCatalog(), sampleCatalog()[0])

	err := NewSQLiteWriter(path).Write(context.Background(), products)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no database should be published on failure")
}
