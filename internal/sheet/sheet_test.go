package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpenlabs/redpen/internal/proof"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnLetter(tt.idx), "idx %d", tt.idx)
	}
}

func TestHeaderIndex(t *testing.T) {
	headers, err := headerIndex([]interface{}{
		"content", "content_markdown", "STATUS", "SCORE", " CONTENT_TYPO_REPORT",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, headers[ColContent])
	assert.Equal(t, 2, headers[ColStatus])
	assert.Equal(t, 4, headers[ColContentReport], "header names are trimmed")

	_, err = headerIndex([]interface{}{"content", "STATUS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCORE")
}

func TestCell_OutOfRange(t *testing.T) {
	headers := map[string]int{ColContent: 0, ColStatus: 5}
	row := []interface{}{"text here"}
	assert.Equal(t, "text here", cell(row, headers, ColContent))
	assert.Equal(t, "", cell(row, headers, ColStatus), "short rows read as empty")
	assert.Equal(t, "", cell(row, headers, ColScore), "unknown column reads as empty")
}

func TestRequested(t *testing.T) {
	rows := []Row{
		{Index: 2, Status: "1. AI검수요청"},
		{Index: 3, Status: "2. AI검수완료"},
		{Index: 4, Status: " 1. AI검수요청 "},
		{Index: 5, Status: ""},
	}
	got := Requested(rows, "1. AI검수요청")
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Index)
	assert.Equal(t, 4, got[1].Index, "status comparison trims whitespace")
}

func result(score int, plainRecs, formattedRecs []proof.ErrorRecord, failures []proof.ChunkFailure, partial bool) *proof.Result {
	return &proof.Result{
		Summary:   proof.Summary{Score: score},
		Plain:     proof.Report{Records: plainRecs, Failures: failures},
		Formatted: proof.Report{Records: formattedRecs},
		Partial:   partial,
	}
}

func TestBuildResult_SourceOnly(t *testing.T) {
	row := Row{Index: 7}
	source := result(3,
		[]proof.ErrorRecord{{Quoted: "teh", Fix: "the", Kind: proof.KindTypo}},
		[]proof.ErrorRecord{{Quoted: "# teh", Fix: "# the", Kind: proof.KindTypo}},
		nil, false)

	res := BuildResult(row, source, nil, "2. AI검수완료")
	assert.Equal(t, 7, res.Index)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, "2. AI검수완료", res.Status)
	assert.Contains(t, res.SourceReport, `"teh"`)
	assert.Empty(t, res.TranslatedReport)
	assert.Contains(t, res.MarkdownReport, `"# teh"`)
	assert.False(t, res.Partial)
}

func TestBuildResult_TranslatedTakesMaxScore(t *testing.T) {
	row := Row{Index: 2}
	source := result(1, nil, nil, nil, false)
	translated := result(4,
		[]proof.ErrorRecord{{Quoted: "된 다", Fix: "된다", Kind: proof.KindSpacing}},
		nil, nil, false)

	res := BuildResult(row, source, translated, "done")
	assert.Equal(t, 4, res.Score)
	assert.Contains(t, res.TranslatedReport, `"된 다"`)
	assert.Empty(t, res.SourceReport)
}

func TestBuildResult_FailuresAreVisible(t *testing.T) {
	row := Row{Index: 9}
	source := result(2, nil, nil,
		[]proof.ChunkFailure{{Variant: proof.VariantPlain, ChunkIndex: 1, Pass: proof.PassJudge, Message: "unavailable"}},
		true)

	res := BuildResult(row, source, nil, "done")
	assert.True(t, res.Partial)
	assert.Contains(t, res.SourceReport, "검수 실패")
	assert.Contains(t, res.SourceReport, "chunk 1")
}

func TestBuildResult_MarkdownCombinesBothDocuments(t *testing.T) {
	row := Row{Index: 3}
	source := result(3, nil,
		[]proof.ErrorRecord{{Quoted: "src", Fix: "source", Kind: proof.KindTypo}},
		nil, false)
	translated := result(3, nil,
		[]proof.ErrorRecord{{Quoted: "trn", Fix: "translated", Kind: proof.KindTypo}},
		nil, false)

	res := BuildResult(row, source, translated, "done")
	assert.Contains(t, res.MarkdownReport, `"src"`)
	assert.Contains(t, res.MarkdownReport, `"trn"`)
	srcPos := strings.Index(res.MarkdownReport, `"src"`)
	trnPos := strings.Index(res.MarkdownReport, `"trn"`)
	assert.Less(t, srcPos, trnPos, "source report comes first")
}
