package extraction

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Result", func() {
	var r *Result

	BeforeEach(func() {
		r = NewResult("Zeta", "Alpha", "Mid")
	})

	It("starts with every key present and empty", func() {
		Expect(r.Keys()).To(Equal([]string{"Zeta", "Alpha", "Mid"}))
		v, ok := r.Lookup("Alpha")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeEmpty())
		Expect(r.Filled()).To(Equal(0))
	})

	It("keeps the original position when a key is overwritten", func() {
		r.Set("Alpha", "1")
		r.Set("Zeta", "2")
		Expect(r.Keys()).To(Equal([]string{"Zeta", "Alpha", "Mid"}))
		Expect(r.Get("Alpha")).To(Equal("1"))
		Expect(r.Filled()).To(Equal(2))
	})

	It("appends new keys", func() {
		r.Set("Extra", "x")
		Expect(r.Keys()).To(HaveLen(4))
		Expect(r.Keys()[3]).To(Equal("Extra"))
	})

	It("reports missing keys", func() {
		_, ok := r.Lookup("Missing")
		Expect(ok).To(BeFalse())
		Expect(r.Get("Missing")).To(BeEmpty())
	})

	It("iterates in key order", func() {
		r.Set("Mid", "m")
		var keys, values []string
		for k, v := range r.All() {
			keys = append(keys, k)
			values = append(values, v)
		}
		Expect(keys).To(Equal([]string{"Zeta", "Alpha", "Mid"}))
		Expect(values).To(Equal([]string{"", "", "m"}))
	})

	It("stops iterating when asked", func() {
		n := 0
		for range r.All() {
			n++
			break
		}
		Expect(n).To(Equal(1))
	})

	It("can be used from a zero value", func() {
		var z Result
		z.Set("a", "b")
		Expect(z.Map()).To(Equal(map[string]string{"a": "b"}))
	})

	Describe("JSON", func() {
		It("encodes keys in order", func() {
			r.Set("Alpha", "A, B")
			data, err := json.Marshal(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"Zeta":"","Alpha":"A, B","Mid":""}`))
		})

		It("encodes an empty result as an empty object", func() {
			data, err := json.Marshal(NewResult())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{}`))
		})

		It("decodes keeping the document order", func() {
			var decoded Result
			err := json.Unmarshal([]byte(`{"b":"2","a":"1","c":""}`), &decoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Keys()).To(Equal([]string{"b", "a", "c"}))
			Expect(decoded.Get("a")).To(Equal("1"))
		})

		It("survives a round trip inside another struct", func() {
			type wrapper struct {
				Fields *Result `json:"fields"`
			}
			r.Set("Mid", "value")
			data, err := json.Marshal(wrapper{Fields: r})
			Expect(err).NotTo(HaveOccurred())

			var out wrapper
			Expect(json.Unmarshal(data, &out)).To(Succeed())
			Expect(out.Fields.Keys()).To(Equal(r.Keys()))
			Expect(out.Fields.Map()).To(Equal(r.Map()))
		})

		It("rejects non-object input", func() {
			var decoded Result
			Expect(json.Unmarshal([]byte(`["a"]`), &decoded)).NotTo(Succeed())
		})

		It("rejects non-string values", func() {
			var decoded Result
			Expect(json.Unmarshal([]byte(`{"a":1}`), &decoded)).NotTo(Succeed())
		})
	})
})
