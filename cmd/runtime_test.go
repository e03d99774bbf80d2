package cmd

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/aitools"
)

var _ = Describe("runtime", func() {
	var saved string

	BeforeEach(func() {
		saved = configPath
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
	})

	AfterEach(func() {
		configPath = saved
	})

	It("registers the computer tool with built-in defaults", func() {
		configPath = ""
		rt, err := newRuntime(hclog.NewNullLogger())
		Expect(err).NotTo(HaveOccurred())
		defer rt.Close()

		Expect(rt.reg.Names()).To(Equal([]string{"computer_control"}))

		result, err := rt.reg.Call("computer_control", aitools.Payload{"action": "mouse_move", "x": 5, "y": 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Success).To(BeTrue())

		entries, err := rt.journal.List("", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Tool).To(Equal("computer_control"))
	})

	It("uses the configured tool name and sqlite journal", func() {
		dir := GinkgoT().TempDir()
		dbPath := filepath.Join(dir, "journal.db")
		hcl := `
computer {
  name = "desk"
}

storage {
  backend = "sqlite"
  path    = "` + dbPath + `"
}
`
		path := filepath.Join(dir, "deskctl.hcl")
		Expect(os.WriteFile(path, []byte(hcl), 0644)).To(Succeed())
		configPath = path

		rt, err := newRuntime(hclog.NewNullLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(rt.reg.Names()).To(Equal([]string{"desk"}))

		_, err = rt.reg.Call("desk", aitools.Payload{"action": "key_press", "key": "enter"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rt.Close()).To(Succeed())
		Expect(dbPath).To(BeAnExistingFile())
	})

	It("reports invalid configuration", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "bad.hcl")
		Expect(os.WriteFile(path, []byte(`backend { type = "vnc" }`), 0644)).To(Succeed())
		configPath = path

		_, err := newRuntime(hclog.NewNullLogger())
		Expect(err).To(MatchError(ContainSubstring("load config")))
	})
})

var _ = Describe("readPayload", func() {
	It("defaults to an empty payload", func() {
		p, err := readPayload(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeEmpty())
	})

	It("parses a JSON object", func() {
		p, err := readPayload([]string{`{"action":"screenshot"}`})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(HaveKeyWithValue("action", "screenshot"))
	})

	It("rejects invalid JSON", func() {
		_, err := readPayload([]string{`{"action":`})
		Expect(err).To(MatchError(HavePrefix("invalid payload: ")))
		Expect(err.Error()).NotTo(ContainSubstring("invalid payload: invalid payload"))
	})
})

var _ = DescribeTable("isSecretName",
	func(name string, secret bool) {
		Expect(isSecretName(name)).To(Equal(secret))
	},
	Entry("api key", "vnc_api_key", true),
	Entry("token", "GITHUB_TOKEN", true),
	Entry("password", "vnc_password", true),
	Entry("plain", "display", false),
	Entry("key without underscore", "monkey", false),
)
