package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("line predicates", func() {
	DescribeTable("IsHeaderLine",
		func(line string, expected bool) {
			Expect(IsHeaderLine(line)).To(Equal(expected))
		},
		Entry("label with colon", "GSTIN:", true),
		Entry("section title", "ORDER DETAILS", true),
		Entry("punctuated title", "SOLD BY (SELLER):", true),
		Entry("padded title", "  TOTAL  ", true),
		Entry("mixed case", "Jane Smith", false),
		Entry("leading digit", "123 MAIN ST", false),
		Entry("label with a value", "GSTIN: 29ABCDE1234F1Z5", false),
		Entry("empty", "", false),
	)

	DescribeTable("IsNameLine",
		func(line string, expected bool) {
			Expect(IsNameLine(line)).To(Equal(expected))
		},
		Entry("first and last name", "John Doe", true),
		Entry("punctuated name", "O'Brien-Smith Jr.", true),
		Entry("padded", "  Mary Jones ", true),
		Entry("contains a digit", "John Doe 2", false),
		Entry("contains a colon", "Bill To:", false),
		Entry("single letter", "J", false),
		Entry("empty", "", false),
	)

	DescribeTable("IsBlankLine",
		func(line string, expected bool) {
			Expect(IsBlankLine(line)).To(Equal(expected))
		},
		Entry("empty", "", true),
		Entry("whitespace", " \t ", true),
		Entry("text", " x ", false),
	)
})

var _ = Describe("Harvester", func() {
	var (
		harvester Harvester
		text      string
		block     AddressBlock
	)

	BeforeEach(func() {
		harvester = Harvester{Labels: DefaultBlockLabels, Structural: true}
	})

	JustBeforeEach(func() {
		block = harvester.Harvest(NewDocument(text))
	})

	When("a labeled block is present", func() {
		BeforeEach(func() {
			text = "Shipping Address:\nJohn Doe\n123 Main St\nSpringfield\n\nGSTIN: 29ABCDE1234F1Z5"
		})

		It("takes the first line as the recipient", func() {
			Expect(block.RecipientName).To(Equal("John Doe"))
		})

		It("stops the address at the blank line", func() {
			Expect(block.AddressLines).To(Equal([]string{"123 Main St", "Springfield"}))
			Expect(block.Address()).To(Equal("123 Main St, Springfield"))
		})
	})

	When("several labels are present", func() {
		BeforeEach(func() {
			text = "Billing Address:\nBob Billing\n1 Bill Rd\n\nShipping Address:\nSam Ship\n2 Ship Rd\n"
		})

		It("prefers the label listed first, not the one appearing first", func() {
			Expect(block.RecipientName).To(Equal("Sam Ship"))
			Expect(block.Address()).To(Equal("2 Ship Rd"))
		})
	})

	When("the preferred label has nothing below it", func() {
		BeforeEach(func() {
			text = "Shipping Address:\n\nBilling Address:\nBob\n5 Road"
		})

		It("moves on to the next label", func() {
			Expect(block.RecipientName).To(Equal("Bob"))
			Expect(block.Address()).To(Equal("5 Road"))
		})
	})

	When("a header line follows the block", func() {
		BeforeEach(func() {
			text = "Ship To\nAnn Lee\n9 Elm St\nORDER SUMMARY\nWidget"
		})

		It("excludes the header and everything after it", func() {
			Expect(block.RecipientName).To(Equal("Ann Lee"))
			Expect(block.AddressLines).To(Equal([]string{"9 Elm St"}))
		})
	})

	When("the block is a single line", func() {
		BeforeEach(func() {
			text = "Bill To\nAnn Lee\n"
		})

		It("returns a name with no address", func() {
			Expect(block.RecipientName).To(Equal("Ann Lee"))
			Expect(block.Address()).To(BeEmpty())
		})
	})

	When("no label is present", func() {
		BeforeEach(func() {
			text = "Invoice 42\nMary Jones\n7 Oak Avenue\nSpringfield\n\nThanks"
		})

		It("falls back to the first name-shaped line", func() {
			Expect(block.RecipientName).To(Equal("Mary Jones"))
			Expect(block.Address()).To(Equal("7 Oak Avenue, Springfield"))
		})

		When("a name-shaped line has nothing below it", func() {
			BeforeEach(func() {
				text = "Hello There\n\nMary Jones\n7 Oak Avenue"
			})

			It("keeps looking", func() {
				Expect(block.RecipientName).To(Equal("Mary Jones"))
				Expect(block.Address()).To(Equal("7 Oak Avenue"))
			})
		})

		When("the structural fallback is disabled", func() {
			BeforeEach(func() {
				harvester.Structural = false
			})

			It("returns an empty block", func() {
				Expect(block.IsZero()).To(BeTrue())
			})
		})
	})

	When("nothing resembles a block", func() {
		BeforeEach(func() {
			text = "@@@ 1\n### 2\n"
		})

		It("returns an empty block", func() {
			Expect(block.IsZero()).To(BeTrue())
			Expect(block.Address()).To(BeEmpty())
		})
	})

	When("custom labels are configured", func() {
		BeforeEach(func() {
			harvester.Labels = []string{"deliver to"}
			text = "Shipping Address:\nIgnored Name\n1 Road\n\nDeliver To:\nPat Kim\n4 Lane\n"
		})

		It("only searches those labels", func() {
			Expect(block.RecipientName).To(Equal("Pat Kim"))
			Expect(block.Address()).To(Equal("4 Lane"))
		})
	})
})

var _ = Describe("Block", func() {
	var (
		rule   Block
		result *Result
	)

	BeforeEach(func() {
		rule = Block{
			Name:      RecipientName,
			Address:   RecipientAddressKey,
			Harvester: Harvester{Labels: DefaultBlockLabels, Structural: true},
		}
		result = NewResult(InvoiceNumber, RecipientName, RecipientAddressKey)
	})

	It("fills both fields from one labeled block", func() {
		rule.Apply(NewDocument("Ship To:\nAnn Lee\n9 Elm St\n"), result)
		Expect(result.Get(RecipientName)).To(Equal("Ann Lee"))
		Expect(result.Get(RecipientAddressKey)).To(Equal("9 Elm St"))
	})

	It("skips the structural fallback when nothing else was recognized", func() {
		rule.Apply(NewDocument("Thank you for shopping\nVisit again soon\n"), result)
		Expect(result.Filled()).To(BeZero())
	})

	It("uses the structural fallback once another field was recognized", func() {
		result.Set(InvoiceNumber, "42")
		rule.Apply(NewDocument("Mary Jones\n7 Oak Avenue\n"), result)
		Expect(result.Get(RecipientName)).To(Equal("Mary Jones"))
		Expect(result.Get(RecipientAddressKey)).To(Equal("7 Oak Avenue"))
	})

	It("never uses the structural fallback when it is disabled", func() {
		rule.Harvester.Structural = false
		result.Set(InvoiceNumber, "42")
		rule.Apply(NewDocument("Mary Jones\n7 Oak Avenue\n"), result)
		Expect(result.Get(RecipientName)).To(BeEmpty())
	})
})
