package invoice

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SahasransuAcharjya/bill-parser/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
		now    time.Time
	)

	newInvoice := func(id string, createdAt time.Time) *Invoice {
		fields := extraction.NewResult(extraction.InvoiceNumber, extraction.GSTIN)
		fields.Set(extraction.InvoiceNumber, "INV-"+id)
		return &Invoice{
			ID:             id,
			Filename:       id + "_invoice.png",
			ContentType:    "image/png",
			Text:           "Invoice Number: INV-" + id,
			Fields:         fields,
			CatalogVersion: extraction.CatalogVersion,
			CreatedAt:      createdAt,
		}
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveInvoice and GetInvoice", func() {
		It("round-trips the invoice, keeping field order", func() {
			Expect(db.SaveInvoice(newInvoice("a", now))).To(Succeed())

			saved, err := db.GetInvoice("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Filename).To(Equal("a_invoice.png"))
			Expect(saved.CreatedAt.Equal(now)).To(BeTrue())
			Expect(saved.Fields.Keys()).To(Equal([]string{extraction.InvoiceNumber, extraction.GSTIN}))
			Expect(saved.Fields.Get(extraction.InvoiceNumber)).To(Equal("INV-a"))
		})

		It("overwrites an invoice with the same ID", func() {
			Expect(db.SaveInvoice(newInvoice("a", now))).To(Succeed())
			updated := newInvoice("a", now)
			updated.Text = "changed"
			Expect(db.SaveInvoice(updated)).To(Succeed())

			saved, err := db.GetInvoice("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Text).To(Equal("changed"))
		})
	})

	Describe("GetInvoice", func() {
		When("the invoice does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := db.GetInvoice("missing")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListInvoices", func() {
		When("the database is empty", func() {
			It("returns an empty, non-nil slice", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(invoices).NotTo(BeNil())
				Expect(invoices).To(BeEmpty())
			})
		})

		When("invoices exist", func() {
			BeforeEach(func() {
				Expect(db.SaveInvoice(newInvoice("old", now))).To(Succeed())
				Expect(db.SaveInvoice(newInvoice("new", now.Add(time.Hour)))).To(Succeed())
				Expect(db.SaveInvoice(newInvoice("mid", now.Add(time.Minute)))).To(Succeed())
			})

			It("returns them newest first", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, len(invoices))
				for i, inv := range invoices {
					ids[i] = inv.ID
				}
				Expect(ids).To(Equal([]string{"new", "mid", "old"}))
			})
		})
	})

	Describe("DeleteInvoice", func() {
		It("removes the invoice", func() {
			Expect(db.SaveInvoice(newInvoice("a", now))).To(Succeed())
			Expect(db.DeleteInvoice("a")).To(Succeed())

			_, err := db.GetInvoice("a")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteInvoice("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("keeps saved invoices", func() {
			Expect(db.SaveInvoice(newInvoice("a", now))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			saved, err := db.GetInvoice("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).To(Equal("a"))
		})
	})
})
