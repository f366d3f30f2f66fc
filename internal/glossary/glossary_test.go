package glossary

import (
	"context"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
)

var testTerms = map[string]string{
	"credit":       "Money in.",
	"credit score": "A number lenders use.",
	"APR":          "Yearly cost of borrowing.",
}

func TestMatcher_MatchText(t *testing.T) {
	m, err := NewMatcher(testTerms)
	require.NoError(t, err)

	tests := []struct {
		name  string
		text  string
		terms []string
		found []string
	}{
		{"longest term wins", "Check your credit score today", []string{"credit score"}, []string{"credit score"}},
		{"case-insensitive", "Your apr is 19.99%", []string{"APR"}, []string{"apr"}},
		{"several terms", "A CREDIT of $5 lowers your APR", []string{"credit", "APR"}, []string{"CREDIT", "APR"}},
		{"word bounded", "Accredited creditors", nil, nil},
		{"nothing", "Hello there", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchText(tt.text)
			require.Len(t, got, len(tt.terms))
			for i, match := range got {
				assert.Equal(t, tt.terms[i], match.Term)
				assert.Equal(t, tt.found[i], match.Text)
				assert.Equal(t, testTerms[tt.terms[i]], match.Definition)
			}
		})
	}
}

func TestMatcher_FindTerms(t *testing.T) {
	m, err := NewMatcher(testTerms)
	require.NoError(t, err)

	doc, err := dom.ParseString(`<html><head><title>credit</title></head><body>
		<p>Your   credit score
		   improved.</p>
		<script>var credit = 1;</script>
		<textarea>credit</textarea>
		<code>APR</code>
		<span class="fiscal-fox-term">credit</span>
		<div id="fiscal-fox-tooltip">APR</div>
		<ul><li>Lower APR</li></ul>
	</body></html>`)
	require.NoError(t, err)

	got := m.FindTerms(doc)
	require.Len(t, got, 2)
	assert.Equal(t, "credit score", got[0].Term)
	assert.Equal(t, "Your credit score improved.", got[0].Context)
	assert.Equal(t, "APR", got[1].Term)
}

func TestNewMatcher_Empty(t *testing.T) {
	_, err := NewMatcher(nil)
	assert.ErrorIs(t, err, ErrNoTerms)

	_, err = NewMatcher(map[string]string{" ": "blank"})
	assert.ErrorIs(t, err, ErrNoTerms)
}

func TestMatcher_Define(t *testing.T) {
	m, err := NewMatcher(testTerms)
	require.NoError(t, err)

	def, ok := m.Define("Credit Score")
	assert.True(t, ok)
	assert.Equal(t, "A number lenders use.", def)

	_, ok = m.Define("mortgage")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	terms, err := Parse([]byte(`{"NSF": "Non-Sufficient Funds"}`))
	require.NoError(t, err)
	assert.Equal(t, "Non-Sufficient Funds", terms["NSF"])

	_, err = Parse([]byte(`{}`))
	assert.ErrorIs(t, err, ErrNoTerms)

	_, err = Parse([]byte(`["NSF"]`))
	assert.Error(t, err)
}

func TestDefaultGlossary(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	assert.Greater(t, m.Len(), 10)

	def, ok := m.Define("overdraft")
	assert.True(t, ok)
	assert.NotEmpty(t, def)
}

func TestLoader(t *testing.T) {
	c := cache.New(cache.NoExpiration, 0)

	first, err := NewLoader(c, nil).Load(context.Background())
	require.NoError(t, err)
	second, err := NewLoader(c, nil).Load(context.Background())
	require.NoError(t, err)

	// loaders sharing a cache share the compiled glossary
	assert.Same(t, first, second)
}
