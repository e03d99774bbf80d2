package aitools_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/aitools"
)

var _ = Describe("Images", func() {
	It("builds data URIs", func() {
		Expect(aitools.DataURI("image/png", []byte("abc"))).To(Equal("data:image/png;base64,YWJj"))
	})

	DescribeTable("DetectImage",
		func(s, mediaType, data string) {
			img := aitools.DetectImage(s)
			if mediaType == "" {
				Expect(img).To(BeNil())
				return
			}
			Expect(img).NotTo(BeNil())
			Expect(img.MediaType).To(Equal(mediaType))
			Expect(img.Data).To(Equal(data))
		},
		Entry("png data url", "data:image/png;base64,iVBORw0KGgo=", "image/png", "iVBORw0KGgo="),
		Entry("jpg alias", "data:image/jpg;base64,/9j/AAA=", "image/jpeg", "/9j/AAA="),
		Entry("raw png", "iVBORw0KGgoAAAA", "image/png", "iVBORw0KGgoAAAA"),
		Entry("plain text", "hello world", "", ""),
	)

	It("extracts the screenshot field from tool content", func() {
		content := map[string]any{
			"screenshot": "data:image/png;base64,iVBORw0KGgo=",
			"width":      10,
			"height":     20,
		}
		img, key, rest := aitools.ExtractImage(content)
		Expect(img).NotTo(BeNil())
		Expect(key).To(Equal("screenshot"))
		Expect(rest).To(Equal(map[string]any{"width": 10, "height": 20}))
	})

	It("ignores bare base64 that only looks like an image", func() {
		img, _, rest := aitools.ExtractImage(map[string]any{"typed": "iVBORw0KGgo"})
		Expect(img).To(BeNil())
		Expect(rest).To(HaveKey("typed"))
	})

	It("ignores non-object content", func() {
		img, _, rest := aitools.ExtractImage("text")
		Expect(img).To(BeNil())
		Expect(rest).To(BeNil())
	})
})
