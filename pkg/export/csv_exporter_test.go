package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classificationFixture() Table {
	return Table{
		Title: "Resultado da Classificacao",
		Columns: []Column{
			{Name: "rank", Weight: 0.5},
			{Name: "full_name", Weight: 3},
			{Name: "status", Weight: 1},
		},
		Rows: [][]string{
			{"1", "Maria Souza", "CLASSIFIED"},
			{"2", "Jose Silva", "RESERVED"},
		},
	}
}

func TestCSVRenderKeepsColumnOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(classificationFixture())
	require.NoError(t, err)
	assert.Equal(t, "rank,full_name,status\n1,Maria Souza,CLASSIFIED\n2,Jose Silva,RESERVED\n", string(out))
}

func TestCSVRenderRejectsRaggedRows(t *testing.T) {
	table := classificationFixture()
	table.Rows = append(table.Rows, []string{"3", "Ana Lima"})

	_, err := NewCSVExporter().Render(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestColumnWidthsFollowWeights(t *testing.T) {
	widths := columnWidths(classificationFixture().Columns)
	require.Len(t, widths, 3)
	assert.InDelta(t, pdfUsableWidth, widths[0]+widths[1]+widths[2], 0.001)
	// full_name is six times the rank column.
	assert.InDelta(t, widths[0]*6, widths[1], 0.001)
}
