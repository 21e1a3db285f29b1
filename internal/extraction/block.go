package extraction

import (
	"regexp"
	"strings"
)

var (
	headerLine = regexp.MustCompile(`^[A-Z][A-Z0-9 /().,-]*:?$`)
	nameLine   = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]+$`)
)

// DefaultBlockLabels are the section labels searched for an address block,
// highest priority first.
var DefaultBlockLabels = []string{"shipping address", "billing address", "ship to", "bill to"}

// IsBlankLine reports whether line holds only whitespace.
func IsBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsHeaderLine reports whether line looks like an all-caps section header
// such as "GSTIN:" or "ORDER DETAILS". Case matters here.
func IsHeaderLine(line string) bool {
	return headerLine.MatchString(strings.TrimSpace(line))
}

// IsNameLine reports whether line looks like a bare personal name: letters,
// spaces, periods, apostrophes and hyphens only.
func IsNameLine(line string) bool {
	return nameLine.MatchString(strings.TrimSpace(line))
}

// AddressBlock is a recipient name and the address lines below it.
type AddressBlock struct {
	RecipientName string
	AddressLines  []string
}

// Address joins the address lines with ", "
func (b AddressBlock) Address() string {
	return strings.Join(b.AddressLines, ", ")
}

// IsZero reports whether no block was found
func (b AddressBlock) IsZero() bool {
	return b.RecipientName == "" && len(b.AddressLines) == 0
}

// Harvester locates a recipient/address block. Labeled sections are tried
// first, in Labels order; when none yields lines and Structural is set, the
// first name-shaped line followed by address lines is used instead.
type Harvester struct {
	Labels     []string
	Structural bool
}

// Harvest returns the first block found, or a zero AddressBlock.
func (h Harvester) Harvest(doc *Document) AddressBlock {
	if block := h.labeled(doc); !block.IsZero() || !h.Structural {
		return block
	}
	return h.structural(doc)
}

// labeled is Phase 1: the first label, in priority order, with lines below it.
func (h Harvester) labeled(doc *Document) AddressBlock {
	for _, label := range h.Labels {
		idx := doc.IndexOf(label)
		if idx < 0 {
			continue
		}
		block := harvestBelow(doc, idx)
		if len(block) == 0 {
			continue
		}
		return AddressBlock{RecipientName: block[0], AddressLines: block[1:]}
	}
	return AddressBlock{}
}

// structural is Phase 2: the first name-shaped line with lines below it.
func (h Harvester) structural(doc *Document) AddressBlock {
	for i := 0; i < doc.Len()-1; i++ {
		if !IsNameLine(doc.Line(i)) {
			continue
		}
		if block := harvestBelow(doc, i); len(block) > 0 {
			return AddressBlock{
				RecipientName: strings.TrimSpace(doc.Line(i)),
				AddressLines:  block,
			}
		}
	}
	return AddressBlock{}
}

// harvestBelow collects trimmed lines after idx up to, not including, the
// first blank or header line.
func harvestBelow(doc *Document, idx int) []string {
	var block []string
	for i := idx + 1; i < doc.Len(); i++ {
		line := doc.Line(i)
		if IsBlankLine(line) || IsHeaderLine(line) {
			break
		}
		block = append(block, strings.TrimSpace(line))
	}
	return block
}

// Block fills a recipient name and address from a single harvest. It must
// come after every other rule: the structural fallback only runs once some
// other field was recognized, so prose with no invoice labels stays empty.
type Block struct {
	Name      string
	Address   string
	Harvester Harvester
}

// Fields implements Rule
func (b Block) Fields() []string {
	return []string{b.Name, b.Address}
}

// Apply implements Rule
func (b Block) Apply(doc *Document, r *Result) {
	block := b.Harvester.labeled(doc)
	if block.IsZero() && b.Harvester.Structural && r.Filled() > 0 {
		block = b.Harvester.structural(doc)
	}
	r.Set(b.Name, block.RecipientName)
	r.Set(b.Address, block.Address())
}
