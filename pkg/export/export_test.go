package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDocument() Document {
	return Document{
		Title: "CS101 section 1",
		Tables: []Table{
			{Name: "Enrolled", Headers: []string{"student_id", "name"}, Rows: [][]string{{"s1", "Ada Park"}}},
			{Name: "Waitlist", Headers: []string{"position", "student_id", "name"}, Rows: [][]string{{"1", "s2", "Bea Lin"}}},
		},
	}
}

func TestCSVExporterWritesTablesInOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDocument())
	require.NoError(t, err)
	expected := "Enrolled\nstudent_id,name\ns1,Ada Park\nWaitlist\nposition,student_id,name\n1,s2,Bea Lin\n"
	assert.Equal(t, expected, string(out))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	doc := Document{Tables: []Table{{Headers: []string{"a", "b"}, Rows: [][]string{{"only-one"}}}}}
	_, err := NewCSVExporter().Render(doc)
	require.Error(t, err)
	_, err = NewPDFExporter().Render(doc)
	require.Error(t, err)
	_, err = NewCSVExporter().Render(Document{})
	require.Error(t, err)
}

func TestPDFExporterProducesPDF(t *testing.T) {
	out, err := NewPDFExporter().Render(rosterDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}
