package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract_PromptMentionsEveryLabelInOrder(t *testing.T) {
	c := ListingContract()
	prompt := c.Prompt()

	last := -1
	for _, f := range c.Spec.Fields {
		idx := strings.Index(prompt, f.Label)
		require.NotEqual(t, -1, idx, "label %s missing from prompt", f.Label)
		assert.Greater(t, idx, last, "label %s out of order", f.Label)
		last = idx
	}
}

func TestContract_PipePromptListsFieldOrder(t *testing.T) {
	c := BatchContract()
	prompt := c.Prompt()

	assert.Contains(t, prompt, "title | price | description | tip | caption")
	assert.Contains(t, prompt, "exactly 5 values")
}

func TestContract_ParsesAnswerShapedLikeItsPrompt(t *testing.T) {
	// Build a response by filling every label the prompt asks for.
	c := ListingContract()
	var b strings.Builder
	for _, f := range c.Spec.Fields {
		b.WriteString(f.Label + " value for " + f.Name + "\n")
	}

	rec := c.Parse(b.String())
	for _, f := range c.Spec.Fields {
		assert.Equal(t, "value for "+f.Name, rec.Value(f.Name))
	}
}

func TestContractByName(t *testing.T) {
	c, err := ContractByName(ContractBatch)
	require.NoError(t, err)
	assert.Equal(t, ModePipe, c.Spec.Mode)

	c, err = ContractByName(ContractListing)
	require.NoError(t, err)
	assert.Equal(t, ModeDelimited, c.Spec.Mode)

	_, err = ContractByName("nope")
	assert.Error(t, err)
}

func TestContracts_CoverRequiredFields(t *testing.T) {
	for _, c := range []Contract{ListingContract(), BatchContract()} {
		names := c.Spec.Names()
		for _, f := range requiredFields {
			assert.Contains(t, names, f, "contract %s", c.Name)
		}
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "delimited", ModeDelimited.String())
	assert.Equal(t, "pipe", ModePipe.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
