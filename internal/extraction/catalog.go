package extraction

import "regexp"

// CatalogVersion identifies the field catalog below. Bump it whenever a
// pattern, label or field changes so stored results can be told apart.
const CatalogVersion = "2024.1"

// Field names, in output order.
const (
	InvoiceNumber        = "Invoice Number"
	OrderNumber          = "Order Number"
	InvoiceDate          = "Invoice Date"
	OrderDate            = "Order Date"
	SellerName           = "Seller Name"
	SellerAddress        = "Seller Address"
	GSTIN                = "GSTIN"
	PAN                  = "PAN"
	BuyerName            = "Buyer Name"
	BillingAddress       = "Billing Address"
	ShippingAddress      = "Shipping Address"
	RecipientName        = "Recipient Name"
	RecipientAddressKey  = "Recipient Address"
	PlaceOfSupply        = "Place Of Supply"
	PlaceOfDelivery      = "Place Of Delivery"
	ProductDescription   = "Product Description"
	Quantity             = "Quantity"
	UnitPrice            = "Unit Price"
	Discount             = "Discount"
	TaxableValue         = "Taxable Value"
	TaxRate              = "Tax Rate"
	TaxType              = "Tax Type"
	TaxAmount            = "Tax Amount"
	TotalItemAmount      = "Total Item Amount"
	TotalQuantity        = "Total Quantity"
	TotalAmount          = "Total Amount"
	GrandTotal           = "Grand Total"
	AmountInWords        = "Amount In Words"
	ModeOfPayment        = "Mode Of Payment"
	PaymentTransactionID = "Payment Transaction Id"
	InvoiceValue         = "Invoice Value"
)

// fieldOrder is the output order of a Result.
var fieldOrder = []string{
	InvoiceNumber, OrderNumber, InvoiceDate, OrderDate,
	SellerName, SellerAddress, GSTIN, PAN,
	BuyerName, BillingAddress, ShippingAddress, RecipientName, RecipientAddressKey,
	PlaceOfSupply, PlaceOfDelivery,
	ProductDescription, Quantity, UnitPrice, Discount, TaxableValue,
	TaxRate, TaxType, TaxAmount, TotalItemAmount,
	TotalQuantity, TotalAmount, GrandTotal, AmountInWords,
	ModeOfPayment, PaymentTransactionID, InvoiceValue,
}

// Building blocks shared by the amount patterns. Currency glyphs are
// consumed but never captured; "â‚¹" is a rupee sign read with the wrong
// encoding.
const (
	currency   = `(?:₹|â‚¹|Rs\.?|INR|\$)?\s*`
	amount     = `(-?\d[\d,]*(?:\.\d+)?)`
	notPercent = `(?:[ \t]*[^%\s\d.,]|[ \t]*$)`

	dashedDate = `(\d{2}[\-.]\d{2}[\-.]\d{4})`
	slashDate  = `(\d{2}/\d{2}/\d{4})`
	wordDate   = `(\d{1,2}\s+[A-Za-z]{3,9},?\s+\d{4})`
	isoDate    = `(\d{4}-\d{2}-\d{2})`

	// label up to the value; the value may sit on the next line
	dateLead = `[_:]?[^\d\n]*\n?[^\d\n]*`
	// same-line value after "Label:" made of words, commas and periods
	inlineValue = `[ \t]*[:\-]?[ \t]*([\w \-,.]+)`
)

// lineItemRow matches one well-formed product row:
//
//	Wireless Mouse HSN: 8471 IGST: 18.0 % 1 499.00 -50.00 380.51 68.49 449.00
//
// description, quantity, gross price, discount, taxable value, tax, total.
var lineItemRow = regexp.MustCompile(`(?im)^[ \t]*([\w(\[][\w ,\-()\[\]/]*)\s+HSN:.*IGST:.*?\s+(\d+)\s+([\d.\-]+)\s+([\d.\-]+)\s+([\d.\-]+)\s+([\d.\-]+)\s+([\d.\-]+)`)

func amountAfter(label string) Pattern {
	return P(label+`[\s:]*`+currency+amount, 1)
}

func catalog(cfg Config) []Rule {
	return []Rule{
		Field(InvoiceNumber, Patterns{
			P(`\bInvoice\s*(Number|No\.|ID)[^\w\d]*([\w\d\-\/]+)`, 2),
			P(`\bInvoice\s*No[_:]?\s*([\w\d\-\/]+)`, 1),
		}),
		Field(OrderNumber, Patterns{
			P(`\bOrder\s*(Number|No\.|ID)[^\w\d]*([\w\d\-\/]+)`, 2),
			P(`\bOrder\s*(?:ID|No)[_:]?\s*([\w\d\-\/]+)`, 1),
		}),
		Field(InvoiceDate, Patterns{
			P(`\bInvoice\s*Date`+dateLead+dashedDate, 1),
			P(`\bInvoice\s*Date`+dateLead+slashDate, 1),
			P(`\bInvoice\s*Date`+dateLead+wordDate, 1),
			P(`\bInvoice\s*Date`+dateLead+isoDate, 1),
		}),
		Field(OrderDate, Patterns{
			P(`\bOrder\s*Date`+dateLead+dashedDate, 1),
			P(`\bOrder\s*Date`+dateLead+slashDate, 1),
			P(`\bOrder\s*Date`+dateLead+wordDate, 1),
			P(`\bOrder\s*Date`+dateLead+isoDate, 1),
		}),
		Field(SellerName, Patterns{
			P(`Sold\s*By\s*[:\-]?\s*([^\n,]+)`, 1),
			P(`Seller\s*Registered\s*Address\s*[:\-]?\s*([^\n,]+)`, 1),
			P(`Seller\s*Name\s*[:\-]?\s*([^\n,]+)`, 1),
		}),
		Field(SellerAddress, Patterns{
			P(`Sold\s*By\s*[:\-]?\s*([^\n]+?)[\s,]*(?:\bGSTIN\b|\bPAN\b|$)`, 1),
			P(`Seller\s*Registered\s*Address\s*[:\-]?\s*([^\n]+?)[\s,]*(?:\bGSTIN\b|\bPAN\b|$)`, 1),
		}),
		Field(GSTIN, Patterns{
			P(`GST\s*(IN\s*No\.?|IN\s*Number|IN|Registration\s*No\.?)[^\w]*([A-Z0-9]+)`, 2),
			P(`GSTIN[:\-]?\s*([A-Z0-9]+)`, 1),
		}),
		Field(PAN, Patterns{
			P(`\bPAN\b\s*(Number|No\.?)?[^\w]*([A-Z0-9]+)`, 2),
		}),
		Field(BuyerName,
			Patterns{P(`\b(?:Buyer|Customer)\s*Name[ \t]*[:\-]?[ \t]*([^\n]+)`, 1)},
			Patterns{P(`Billing\s*Address`+inlineValue, 1)},
			Window{Label: "Billing Address", Lines: 1},
		),
		Field(BillingAddress, Window{Label: "Billing Address", Lines: cfg.Window}),
		Field(ShippingAddress,
			Patterns{P(`Shipping\s*Address`+inlineValue, 1)},
			Window{Label: "Shipping Address", Lines: cfg.Window},
		),
		Field(PlaceOfSupply, Patterns{P(`Place\s*of\s*supply`+inlineValue, 1)}),
		Field(PlaceOfDelivery, Patterns{P(`Place\s*of\s*delivery`+inlineValue, 1)}),
		Composite{
			Row: lineItemRow,
			Members: []Member{
				{Group: 1, Fallback: Field(ProductDescription, Patterns{
					P(`^[ \t]*(?:Product\s*)?Description[ \t]*[:\-][ \t]*([^\n]+)`, 1),
					P(`Description[ \t]*\n[ \t]*([^\n]+)`, 1),
				})},
				{Group: 2, Fallback: Field(Quantity, Patterns{
					P(`\bQty\b[\s:.]*(\d+)`, 1),
					P(`\bQuantity\b[\s:]*(\d+)`, 1),
				})},
				{Group: 3, Fallback: Field(UnitPrice, Patterns{
					amountAfter(`Unit\s*Price`),
					amountAfter(`Gross\s*Amount`),
				})},
				{Group: 4, Fallback: Field(Discount, Patterns{
					amountAfter(`Discount`),
				})},
				{Group: 5, Fallback: Field(TaxableValue, Patterns{
					amountAfter(`Taxable\s*Value`),
				})},
				{Group: 6, Fallback: Field(TaxAmount, Patterns{
					P(`\bIGST[\s:]*`+currency+amount+notPercent, 1),
					P(`\bTax\s*Amount[\s:]*`+currency+amount+notPercent, 1),
				})},
				{Group: 7, Fallback: Field(TotalItemAmount, Patterns{
					amountAfter(`Item\s*Total`),
					amountAfter(`TOTAL\s*PRICE`),
				})},
			},
		},
		Field(TaxRate, Patterns{
			P(`\b(?:IGST|CGST|SGST|UTGST|GST|Tax)\s*(?:Rate)?\s*[@:\-]?\s*(\d{1,2}(?:\.\d+)?\s*%)`, 1),
		}),
		Field(TaxType, Patterns{
			P(`\b(IGST|CGST|SGST|UTGST)\b`, 1),
		}),
		Field(TotalQuantity, Patterns{
			P(`TOTAL\s*QTY[\s:.]*(\d+)`, 1),
			P(`Total\s*Quantity[\s:]*(\d+)`, 1),
		}),
		Field(TotalAmount, Patterns{
			amountAfter(`TOTAL\s*PRICE`),
			amountAfter(`Total\s*Amount`),
		}),
		Field(GrandTotal, Patterns{
			amountAfter(`Grand\s*Total`),
			P(`^[ \t]*TOTAL[ \t]*[:\-]?[ \t]*`+currency+amount+`[ \t]*$`, 1),
		}),
		Field(AmountInWords, Patterns{
			P(`Amount\s*(?:Chargeable\s*)?in\s*Words[\s:]*([^\n]+)`, 1),
		}),
		Field(ModeOfPayment, Patterns{
			P(`Mode\s*of\s*Payment[\s:]*([^\n]+)`, 1),
			P(`Payment\s*Mode[\s:]*([^\n]+)`, 1),
		}),
		Field(PaymentTransactionID, Patterns{
			P(`Payment\s*Transaction\s*ID[\s:]*([^\n]+)`, 1),
			P(`\bTransaction\s*ID[\s:]*([\w\-]+)`, 1),
		}),
		Field(InvoiceValue, Patterns{
			amountAfter(`Invoice\s*Value`),
		}),
		// last, so its structural fallback sees every other field
		Block{
			Name:      RecipientName,
			Address:   RecipientAddressKey,
			Harvester: Harvester{Labels: cfg.BlockLabels, Structural: cfg.Structural},
		},
	}
}
