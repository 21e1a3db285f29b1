package extraction

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoadProfile", func() {
	var (
		path    string
		content string
		cfg     Config
		err     error
	)

	JustBeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "profile.yaml")
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		cfg, err = LoadProfile(path)
	})

	When("every key is set", func() {
		BeforeEach(func() {
			content = "window: 3\nblock_labels:\n  - deliver to\n  - consignee\nstructural_fallback: false\n"
		})

		It("loads the profile", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(Config{
				Window:      3,
				BlockLabels: []string{"deliver to", "consignee"},
				Structural:  false,
			}))
		})
	})

	When("only some keys are set", func() {
		BeforeEach(func() {
			content = "window: 4\n"
		})

		It("keeps defaults for the rest", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Window).To(Equal(4))
			Expect(cfg.BlockLabels).To(Equal(DefaultBlockLabels))
			Expect(cfg.Structural).To(BeTrue())
		})
	})

	When("the window is out of range", func() {
		BeforeEach(func() {
			content = "window: 0\n"
		})

		It("returns an error", func() {
			Expect(err).To(MatchError(ContainSubstring("window must be > 0")))
		})
	})

	When("a label is blank", func() {
		BeforeEach(func() {
			content = "block_labels: [\"ship to\", \" \"]\n"
		})

		It("returns an error", func() {
			Expect(err).To(MatchError(ContainSubstring("block_labels[1]")))
		})
	})

	When("the file is not YAML", func() {
		BeforeEach(func() {
			content = "window: [1, 2\n"
		})

		It("returns an error", func() {
			Expect(err).To(MatchError(ContainSubstring("parsing profile")))
		})
	})
})

var _ = Describe("LoadProfile with a missing file", func() {
	It("returns an error", func() {
		_, err := LoadProfile(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("reading profile")))
	})
})

var _ = Describe("Config", func() {
	It("fills zero values from the defaults", func() {
		cfg := Config{}.withDefaults()
		Expect(cfg.Window).To(Equal(2))
		Expect(cfg.BlockLabels).To(Equal(DefaultBlockLabels))
	})

	It("does not share the default label slice", func() {
		cfg := DefaultConfig()
		cfg.BlockLabels[0] = "changed"
		Expect(DefaultBlockLabels[0]).To(Equal("shipping address"))
	})
})
