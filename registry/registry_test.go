package registry_test

import (
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/aitools"
	"deskctl/registry"
)

// echoTool returns its payload as content
type echoTool struct {
	name   string
	desc   string
	panics bool
	closed bool
	err    error
}

func newEcho(name string) *echoTool {
	return &echoTool{name: name, desc: "echoes its payload"}
}

func (t *echoTool) ToolName() string        { return t.name }
func (t *echoTool) ToolDescription() string { return t.desc }

func (t *echoTool) ToolPayloadSchema() aitools.Schema {
	return aitools.Schema{
		Type: aitools.TypeObject,
		Properties: aitools.PropertyMap{
			"fail": {Type: aitools.TypeString, Description: "error to report"},
		},
	}
}

func (t *echoTool) Execute(p aitools.Payload) aitools.Result {
	if t.panics {
		panic("boom")
	}
	if msg, ok := p["fail"].(string); ok {
		return aitools.Failed(msg)
	}
	return aitools.Succeeded(map[string]any(p))
}

func (t *echoTool) Close() error {
	t.closed = true
	return t.err
}

// memRecorder collects invocations
type memRecorder struct {
	mu   sync.Mutex
	invs []registry.Invocation
	err  error
}

func (m *memRecorder) Record(inv registry.Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invs = append(m.invs, inv)
	return m.err
}

var _ = Describe("Registry", func() {
	var reg *registry.Registry

	BeforeEach(func() {
		reg = registry.New(registry.Options{})
	})

	Describe("Register", func() {
		It("rejects a duplicate name and keeps the first tool", func() {
			first := newEcho("echo")
			Expect(reg.Register(first)).To(Succeed())

			err := reg.Register(newEcho("echo"))
			Expect(errors.Is(err, registry.ErrDuplicateName)).To(BeTrue())

			got, err := reg.Lookup("echo")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(first))
		})

		It("rejects tools without a name or description", func() {
			Expect(reg.Register(newEcho(""))).NotTo(Succeed())
			Expect(reg.Register(&echoTool{name: "mute"})).NotTo(Succeed())
			Expect(reg.Names()).To(BeEmpty())
		})
	})

	Describe("Lookup", func() {
		It("fails with ErrNotFound for unknown names", func() {
			_, err := reg.Lookup("ghost")
			Expect(errors.Is(err, registry.ErrNotFound)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("ghost"))
		})
	})

	Describe("List", func() {
		It("projects tools in registration order", func() {
			Expect(reg.Register(newEcho("b"))).To(Succeed())
			Expect(reg.Register(newEcho("a"))).To(Succeed())

			infos := reg.List()
			Expect(infos).To(HaveLen(2))
			Expect(infos[0].Name).To(Equal("b"))
			Expect(infos[1].Name).To(Equal("a"))
			Expect(infos[0].Description).To(Equal("echoes its payload"))
			Expect(infos[0].Parameters.Properties).To(HaveKey("fail"))
		})

		It("is idempotent without intervening registration", func() {
			Expect(reg.Register(newEcho("x"))).To(Succeed())
			Expect(reg.Register(newEcho("y"))).To(Succeed())
			Expect(reg.List()).To(ConsistOf(reg.List()))
		})
	})

	Describe("Unregister", func() {
		It("removes the tool from lookup and listing", func() {
			tool := newEcho("gone")
			Expect(reg.Register(tool)).To(Succeed())
			Expect(reg.Register(newEcho("kept"))).To(Succeed())

			removed, err := reg.Unregister("gone")
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeIdenticalTo(tool))

			_, err = reg.Lookup("gone")
			Expect(errors.Is(err, registry.ErrNotFound)).To(BeTrue())
			Expect(reg.Names()).To(Equal([]string{"kept"}))

			Expect(reg.Register(newEcho("gone"))).To(Succeed())
		})

		It("fails for unknown names", func() {
			_, err := reg.Unregister("ghost")
			Expect(errors.Is(err, registry.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Call", func() {
		It("executes the named tool", func() {
			Expect(reg.Register(newEcho("echo"))).To(Succeed())
			r, err := reg.Call("echo", aitools.Payload{"hello": "world"})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Success).To(BeTrue())
			Expect(r.Content).To(HaveKeyWithValue("hello", "world"))
		})

		It("returns ErrNotFound outside the result", func() {
			_, err := reg.Call("ghost", nil)
			Expect(errors.Is(err, registry.ErrNotFound)).To(BeTrue())
		})

		It("turns a panicking tool into a reported failure", func() {
			tool := newEcho("fragile")
			tool.panics = true
			Expect(reg.Register(tool)).To(Succeed())

			r, err := reg.Call("fragile", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("boom"))
		})

		It("records every invocation", func() {
			rec := &memRecorder{}
			reg = registry.New(registry.Options{Recorder: rec})
			Expect(reg.Register(newEcho("echo"))).To(Succeed())

			_, err := reg.Call("echo", aitools.Payload{"n": 1.0})
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Call("echo", aitools.Payload{"fail": "nope"})
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.invs).To(HaveLen(2))
			Expect(rec.invs[0].ID).NotTo(BeEmpty())
			Expect(rec.invs[0].ID).NotTo(Equal(rec.invs[1].ID))
			Expect(rec.invs[0].Tool).To(Equal("echo"))
			Expect(rec.invs[0].Success).To(BeTrue())
			Expect(rec.invs[0].Payload).To(HaveKeyWithValue("n", 1.0))
			Expect(rec.invs[1].Success).To(BeFalse())
			Expect(rec.invs[1].Error).To(Equal("nope"))
			Expect(rec.invs[1].CreatedAt).NotTo(BeZero())
		})

		It("ignores recorder failures", func() {
			rec := &memRecorder{err: errors.New("disk full")}
			reg = registry.New(registry.Options{Recorder: rec})
			Expect(reg.Register(newEcho("echo"))).To(Succeed())

			r, err := reg.Call("echo", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Success).To(BeTrue())
		})

		It("is safe under concurrent calls and registration", func() {
			Expect(reg.Register(newEcho("echo"))).To(Succeed())
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(2)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					r, err := reg.Call("echo", aitools.Payload{})
					Expect(err).NotTo(HaveOccurred())
					Expect(r.Success).To(BeTrue())
				}()
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(reg.Register(newEcho(fmt.Sprintf("t%d", i)))).To(Succeed())
					_ = reg.List()
				}(i)
			}
			wg.Wait()
			Expect(reg.Names()).To(HaveLen(21))
		})
	})

	Describe("Close", func() {
		It("closes every tool and joins errors", func() {
			a, b := newEcho("a"), newEcho("b")
			b.err = errors.New("stuck")
			Expect(reg.Register(a)).To(Succeed())
			Expect(reg.Register(b)).To(Succeed())

			err := reg.Close()
			Expect(err).To(MatchError(ContainSubstring("stuck")))
			Expect(a.closed).To(BeTrue())
			Expect(b.closed).To(BeTrue())
		})
	})
})
