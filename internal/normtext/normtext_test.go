package normtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Cordless drill", "Cordless drill"},
		{"separator", "M8 | M10", "M8 / M10"},
		{"newline", "line one\nline two", "line one line two"},
		{"crlf and tabs", "a\r\n\tb", "a b"},
		{"surrounding space", "  x  ", "x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeCell(tt.in))
		})
	}
}

func TestSplitCells(t *testing.T) {
	assert.Equal(t, []string{"a", "", "c"}, SplitCells(" a |  | c"))
	assert.Equal(t, []string{"a", ""}, SplitCells(" a |"))
	assert.Equal(t, []string{""}, SplitCells(""))
}

func TestTable_Normalize_PadsAndFolds(t *testing.T) {
	table := Table{
		Headers: []string{"Item", "Qty", "Unit"},
		Rows: [][]string{
			{"Drill", "50"},
			{"Saw", "2", "pcs", "extra", "", "notes"},
		},
	}

	table.Normalize()

	assert.Equal(t, []string{"Drill", "50", ""}, table.Rows[0])
	assert.Equal(t, []string{"Saw", "2", "pcs extra notes"}, table.Rows[1])
}

func TestTable_Normalize_PromotesFirstRow(t *testing.T) {
	table := Table{Rows: [][]string{{"Item", "Qty"}, {"Drill", "5"}}}

	table.Normalize()

	assert.Equal(t, []string{"Item", "Qty"}, table.Headers)
	assert.Equal(t, [][]string{{"Drill", "5"}}, table.Rows)
}

func TestTable_Render(t *testing.T) {
	table := Table{
		Headers: []string{"Item", "Qty"},
		Rows:    [][]string{{"Drill | SDS", "50"}},
	}

	want := strings.Join([]string{
		TableStart,
		"HEADERS: Item | Qty",
		"ROW: Drill / SDS | 50",
		TableEnd,
	}, "\n")
	assert.Equal(t, want, table.Render())

	empty := Table{}
	assert.Equal(t, "", empty.Render())
}

func TestBuilder(t *testing.T) {
	var b Builder
	b.Line("Request for Quotation")
	b.Line("")
	b.Line("")
	b.Line("Customer: ACME")
	b.Table(Table{Headers: []string{"Item", "Qty"}, Rows: [][]string{{"Drill", "50"}}})
	b.Line("HEADERS: not a real table")
	b.Table(Table{})

	text := b.String()
	require.NoError(t, CheckIntegrity(text))
	assert.Equal(t, strings.Join([]string{
		"Request for Quotation",
		"",
		"Customer: ACME",
		TableStart,
		"HEADERS: Item | Qty",
		"ROW: Drill | 50",
		TableEnd,
		"> HEADERS: not a real table",
	}, "\n"), text)
}

func TestBuilder_Text(t *testing.T) {
	var inner Builder
	inner.Line("Please quote:")
	inner.Table(Table{Headers: []string{"Item", "Qty"}, Rows: [][]string{{"Valve", "4"}}})

	var b Builder
	b.Line("Subject: RFQ 12")
	b.Line("")
	b.Text(inner.String())
	b.Text("")

	text := b.String()
	require.NoError(t, CheckIntegrity(text))
	assert.Equal(t, strings.Join([]string{
		"Subject: RFQ 12",
		"",
		"Please quote:",
		TableStart,
		"HEADERS: Item | Qty",
		"ROW: Valve | 4",
		TableEnd,
	}, "\n"), text)
}

func TestParse(t *testing.T) {
	text := strings.Join([]string{
		"intro",
		TableStart,
		"HEADERS: a | b",
		"ROW: 1 | 2",
		TableEnd,
		"outro",
	}, "\n")

	segs := Parse(text)

	require.Len(t, segs, 3)
	assert.Equal(t, SegmentProse, segs[0].Kind)
	assert.Equal(t, SegmentTable, segs[1].Kind)
	assert.Equal(t, []string{"a", "b"}, segs[1].Table.Headers)
	assert.Equal(t, [][]string{{"1", "2"}}, segs[1].Table.Rows)
	assert.Equal(t, "outro", segs[2].Text())
	assert.Equal(t, text, Join(segs))
}

func TestParse_Empty(t *testing.T) {
	assert.Nil(t, Parse(""))
}

func TestTables(t *testing.T) {
	var b Builder
	b.Table(Table{Headers: []string{"x"}, Rows: [][]string{{"1"}}})
	b.Line("between")
	b.Table(Table{Headers: []string{"y"}})

	tables := Tables(b.String())

	require.Len(t, tables, 2)
	assert.Equal(t, []string{"y"}, tables[1].Headers)
}

func TestCheckIntegrity(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"prose only", "just text\nmore", ""},
		{"valid table", TableStart + "\nHEADERS: a | b\nROW: 1 | 2\n" + TableEnd, ""},
		{"nested", TableStart + "\nHEADERS: a\n" + TableStart, "nested"},
		{"end without start", TableEnd, "without start"},
		{"unterminated", TableStart + "\nHEADERS: a", "unterminated"},
		{"no headers", TableStart + "\n" + TableEnd, "without headers"},
		{"row before headers", TableStart + "\nROW: 1\n" + TableEnd, "row before headers"},
		{"width mismatch", TableStart + "\nHEADERS: a | b\nROW: 1\n" + TableEnd, "1 values"},
		{"row outside", "ROW: 1", "outside"},
		{"prose inside", TableStart + "\nHEADERS: a\nhello\n" + TableEnd, "prose inside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIntegrity(tt.text)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRepair(t *testing.T) {
	broken := strings.Join([]string{
		"Page 1",
		TableEnd,
		TableStart,
		"HEADERS: Item | Qty | Unit",
		"ROW: Drill | 50",
		"a stray note",
		"ROW: Saw | 2 | pcs | spare blades",
		TableStart,
		"ROW: Helmet | 10",
	}, "\n")

	repaired := Repair(broken)

	require.NoError(t, CheckIntegrity(repaired))
	tables := Tables(repaired)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"Drill", "50", ""}, tables[0].Rows[0])
	assert.Equal(t, []string{"Saw", "2", "pcs spare blades"}, tables[0].Rows[1])
	assert.Equal(t, []string{"Helmet", "10"}, tables[1].Headers)
	assert.Contains(t, repaired, "a stray note")
	assert.NotContains(t, strings.SplitN(repaired, "\n", 2)[0], TableEnd)
}

func TestRepair_ValidTextUnchanged(t *testing.T) {
	text := "intro\n" + TableStart + "\nHEADERS: a\nROW: 1\n" + TableEnd
	assert.Equal(t, text, Repair(text))
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		TableStart + "\nROW: a | b\nROW: 1",
		"HEADERS: loose\n" + TableEnd + "\ntext",
		TableStart + "\n" + TableStart + "\nHEADERS: x\n",
	}
	for _, in := range inputs {
		once := Repair(in)
		require.NoError(t, CheckIntegrity(once), in)
		assert.Equal(t, once, Repair(once))
	}
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 5, RuneLen("héllo"))
}
