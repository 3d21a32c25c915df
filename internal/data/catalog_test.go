package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"portfolio-doctor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shiller.csv"), []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("2015,1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c := NewCatalog(dir)
	c.Register("custom", model.MarketSeries{{Year: 2000, EquitiesPrice: 1, InflationIndex: 1}})
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "custom", list[0].Name)
	assert.Equal(t, DatasetInfo{
		Name:      "shiller",
		File:      filepath.Join(dir, "shiller.csv"),
		FirstYear: 2015,
		LastYear:  2018,
		Years:     4,
	}, list[1])

	s, err := c.Load(ctx, "shiller")
	require.NoError(t, err)
	assert.Equal(t, want2015to2018, s)

	for _, bad := range []string{"", "../shiller", "missing", ".hidden"} {
		_, err := c.Load(ctx, bad)
		assert.ErrorIs(t, err, ErrDatasetNotFound, bad)
	}
}

func TestCatalogWithoutDir(t *testing.T) {
	c := NewCatalog("")
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
