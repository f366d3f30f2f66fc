package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

const page = `<html><body>
	<section>
		<h2>Fees</h2>
		<p>Your monthly <b>fee</b> is $4.00. Another fee applies to wires.</p>
		<p hidden>Hidden fee schedule</p>
		<p aria-hidden="true">Screen readers skip this fee</p>
		<div style="display: none"><p>Collapsed fee panel</p></div>
		<div style="visibility:hidden">Invisible fee</div>
		<ul><li>No <span>FEE</span> for e-transfers</li></ul>
	</section>
	<script>var fee = 1;</script>
	<article>Overdraft protection</article>
</body></html>`

func TestFindKeywordMatches(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	got := FindKeywordMatches(doc, "Fee")
	require.Len(t, got, 3)

	// the heading has no block of its own, so its section is reported
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "section", got[0].Tag)

	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, "p", got[1].Tag)
	assert.Equal(t, "Your monthly fee is $4.00. Another fee applies to wires.", got[1].Text)

	assert.Equal(t, 2, got[2].Index)
	assert.Equal(t, "li", got[2].Tag)
	assert.Equal(t, "No FEE for e-transfers", got[2].Text)
}

func TestFindKeywordMatches_WholeWordInHeading(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	got := FindKeywordMatches(doc, "fees")
	require.Len(t, got, 1)
	assert.Equal(t, "section", got[0].Tag)
}

func TestFindKeywordMatches_Empty(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	assert.Empty(t, FindKeywordMatches(doc, "   "))
	assert.Empty(t, FindKeywordMatches(doc, "mortgage"))
}

func TestVisibleTextNodes(t *testing.T) {
	doc, err := dom.ParseString(`<body><p>one</p><p hidden>two</p><input type="hidden" value="x"><p>three</p></body>`)
	require.NoError(t, err)

	var texts []string
	for _, n := range VisibleTextNodes(doc) {
		texts = append(texts, n.Data)
	}
	assert.Equal(t, []string{"one", "three"}, texts)
}

func TestSuggest(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	got, ok := Suggest(doc, "overdraf")
	assert.True(t, ok)
	assert.Equal(t, "overdraft", got)

	got, ok = Suggest(doc, "montly")
	assert.True(t, ok)
	assert.Equal(t, "monthly", got)

	_, ok = Suggest(doc, "cryptocurrency")
	assert.False(t, ok)

	// hidden text is never suggested
	_, ok = Suggest(doc, "schedulx")
	assert.False(t, ok)
}
