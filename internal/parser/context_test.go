package parser

import (
	"testing"
)

func TestHasDebitHeaderNearby(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected bool
	}{
		{
			name:     "debit cell in the same row",
			html:     `<table><tr><td class="debit">$5.00</td><td id="x">Coffee</td></tr></table>`,
			expected: true,
		},
		{
			name:     "empty debit cell says nothing",
			html:     `<table><tr><th>Date</th><th>Amount</th></tr><tr><td class="debit"></td><td id="x">$5.00</td></tr></table>`,
			expected: false,
		},
		{
			name:     "table header names withdrawals",
			html:     `<table><tr><th>Date</th><th>Withdrawal</th></tr><tr><td>Jan 5</td><td id="x">$5.00</td></tr></table>`,
			expected: true,
		},
		{
			name:     "thead td header",
			html:     `<table><thead><tr><td>Date</td><td>Debit</td></tr></thead><tbody><tr><td>Jan 5</td><td id="x">$5.00</td></tr></tbody></table>`,
			expected: true,
		},
		{
			name:     "table header decides even when a label sits outside",
			html:     `<div><p>Debit</p><table><tr><th>Amount</th></tr><tr><td id="x">$5.00</td></tr></table></div>`,
			expected: false,
		},
		{
			name: "aria grid column header",
			html: `<div role="grid">
				<div role="row"><div role="columnheader">Date</div><div role="columnheader">Debit</div></div>
				<div role="row"><div role="cell">Jan 5</div><div role="cell" id="x">$5.00</div></div>
			</div>`,
			expected: true,
		},
		{
			name: "div layout with a label sibling",
			html: `<div class="grid">
				<div class="head"><span>Date</span><span>Withdrawal</span></div>
				<div class="line"><span>Jan 5</span><span id="x">$5.00</span></div>
			</div>`,
			expected: true,
		},
		{
			name: "long sibling text is not a label",
			html: `<div>
				<p>Questions about a debit card charge? Call us any time, day or night, on the number on the back of your card.</p>
				<div><span id="x">$5.00</span></div>
			</div>`,
			expected: false,
		},
		{
			name:     "no context",
			html:     `<div><span id="x">$5.00</span></div>`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.html)
			el := doc.Find("#x").Nodes[0]
			if got := HasDebitHeaderNearby(el); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}
