package listing

import (
	"fmt"
	"strings"
)

const (
	ContractListing = "listing"
	ContractBatch   = "batch"
)

const promptPreamble = `You are a top-tier reseller and copywriter. Analyze the product in the image deeply: brand, model, condition and visible flaws.`

// Contract pairs a prompt with the FieldSpec used to parse its answer. The
// prompt text is generated from the FieldSpec, so the labels or positions the
// generator is asked for are always the ones the parser expects.
type Contract struct {
	Name string
	Spec FieldSpec
}

// ListingContract is the label-delimited contract used for single items.
func ListingContract() Contract {
	return Contract{
		Name: ContractListing,
		Spec: NewDelimitedSpec(
			Field{Name: FieldCaption, Label: "CAPTION:", Instruction: "a hype caption for an Instagram or WhatsApp story, with emojis, the price and a call to action"},
			Field{Name: FieldTitle, Label: "TITLE:", Instruction: "an SEO optimized marketplace title"},
			Field{Name: FieldPrice, Label: "PRICE:", Instruction: "one estimated resale price in rupees, digits only, no range"},
			Field{Name: FieldDescription, Label: "DESC:", Instruction: "a professional description including condition as X/10 and any flaws"},
			Field{Name: FieldTip, Label: "TIP:", Instruction: "one specific tip to sell this item faster"},
		),
	}
}

// BatchContract is the pipe-positional contract used for bulk processing.
func BatchContract() Contract {
	return Contract{
		Name: ContractBatch,
		Spec: NewPipeSpec(
			Field{Name: FieldTitle, Instruction: "marketplace title"},
			Field{Name: FieldPrice, Instruction: "one estimated resale price in rupees, digits only"},
			Field{Name: FieldDescription, Instruction: "short description with condition"},
			Field{Name: FieldTip, Instruction: "one selling tip"},
			Field{Name: FieldCaption, Instruction: "short social media caption"},
		),
	}
}

// ContractByName resolves a built-in contract.
func ContractByName(name string) (Contract, error) {
	switch name {
	case ContractListing:
		return ListingContract(), nil
	case ContractBatch:
		return BatchContract(), nil
	default:
		return Contract{}, fmt.Errorf("unknown contract: %q", name)
	}
}

// Parse parses a raw response according to the contract's spec.
func (c Contract) Parse(raw string) Record {
	return Parse(raw, c.Spec)
}

// Prompt renders the generator instructions for this contract.
func (c Contract) Prompt() string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	switch c.Spec.Mode {
	case ModePipe:
		sep := c.Spec.separator()
		names := c.Spec.Names()
		fmt.Fprintf(&b, "Reply with a single line of exactly %d values separated by %q, in this order:\n", len(names), sep)
		b.WriteString(strings.Join(names, " "+sep+" "))
		b.WriteString("\n\nWhere:\n")
		for _, f := range c.Spec.Fields {
			fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Instruction)
		}
		fmt.Fprintf(&b, "\nNever use %q inside a value. Do not add any other text.", sep)
	default:
		b.WriteString("Reply using exactly these labels, in this order, each followed by its value:\n")
		for _, f := range c.Spec.Fields {
			fmt.Fprintf(&b, "%s <%s>\n", f.Label, f.Instruction)
		}
		b.WriteString("\nWrite every label exactly as shown, once. Do not add any other headings or text.")
	}
	return b.String()
}
