package computer_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/aitools"
	"deskctl/computer"
)

func content(r aitools.Result) map[string]any {
	m, ok := r.Content.(map[string]any)
	Expect(ok).To(BeTrue(), "content is %T", r.Content)
	return m
}

var _ = Describe("Tool", func() {
	var (
		fake   *fakeBackend
		tool   *computer.Tool
		sleeps []time.Duration
	)

	BeforeEach(func() {
		fake = newFakeBackend()
		sleeps = nil
		tool = computer.NewWithBackend(fake, computer.Options{
			Sleep: func(d time.Duration) { sleeps = append(sleeps, d) },
		})
	})

	Describe("identity", func() {
		It("uses the default name and description", func() {
			Expect(tool.ToolName()).To(Equal("computer_control"))
			Expect(tool.ToolDescription()).To(Equal("Control computer with screenshot, mouse, and keyboard actions"))
			Expect(tool.ToolPayloadSchema()).To(Equal(computer.Schema()))
			Expect(tool.DoubleClickDelay()).To(Equal(50 * time.Millisecond))
		})

		It("honours a configured name", func() {
			t := computer.NewWithBackend(fake, computer.Options{Name: "desk"})
			Expect(t.ToolName()).To(Equal("desk"))
		})
	})

	Describe("result envelope", func() {
		DescribeTable("success holds exactly when error is absent",
			func(payload aitools.Payload) {
				r := tool.Execute(payload)
				Expect(r.Success).To(Equal(r.Error == nil))
				Expect(r.Content).NotTo(BeNil())
				if !r.Success {
					Expect(content(r)).To(HaveKeyWithValue("error", *r.Error))
				}
			},
			Entry("screenshot", aitools.Payload{"action": "screenshot"}),
			Entry("move", aitools.Payload{"action": "mouse_move", "x": 1.0, "y": 2.0}),
			Entry("unknown action", aitools.Payload{"action": "fly"}),
			Entry("missing field", aitools.Payload{"action": "mouse_move"}),
			Entry("unknown key", aitools.Payload{"action": "key_press", "key": "hyper"}),
			Entry("empty payload", aitools.Payload{}),
		)
	})

	Describe("screenshot", func() {
		It("returns a PNG data URI with dimensions", func() {
			r := tool.Execute(aitools.Payload{"action": "screenshot"})
			Expect(r.Success).To(BeTrue())
			c := content(r)
			Expect(c).To(HaveKeyWithValue("width", 64))
			Expect(c).To(HaveKeyWithValue("height", 48))

			uri, ok := c["screenshot"].(string)
			Expect(ok).To(BeTrue())
			Expect(uri).To(HavePrefix("data:image/png;base64,"))
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
			Expect(err).NotTo(HaveOccurred())
			img, err := png.Decode(bytes.NewReader(raw))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(64))
			Expect(img.Bounds().Dy()).To(Equal(48))
		})

		It("captures only the first screen", func() {
			fake.screens = append(fake.screens, computer.Screen{ID: 1, Name: "secondary"})
			Expect(tool.Execute(aitools.Payload{"action": "screenshot"}).Success).To(BeTrue())
			Expect(fake.captures.Load()).To(Equal(int32(1)))
		})

		It("fails without capturing when there are no screens", func() {
			fake.screens = nil
			r := tool.Execute(aitools.Payload{"action": "screenshot"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(Equal("No screens found"))
			Expect(fake.captures.Load()).To(BeZero())
		})

		It("reports capture failures", func() {
			fake.img = nil
			r := tool.Execute(aitools.Payload{"action": "screenshot"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("capture unavailable"))
		})

		It("reports encoder failures", func() {
			t := computer.NewWithBackend(fake, computer.Options{Encoder: failingEncoder{}})
			r := t.Execute(aitools.Payload{"action": "screenshot"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("encoder broke"))
		})
	})

	Describe("mouse_move", func() {
		It("moves to absolute coordinates", func() {
			r := tool.Execute(aitools.Payload{"action": "mouse_move", "x": 100.0, "y": 200.0})
			Expect(r.Success).To(BeTrue())
			Expect(content(r)).To(HaveKeyWithValue("moved_to", map[string]any{"x": 100, "y": 200}))
			Expect(fake.Calls()).To(Equal([]backendCall{{Op: "move", X: 100, Y: 200}}))
		})

		It("passes negative coordinates through to the backend", func() {
			Expect(tool.Execute(aitools.Payload{"action": "mouse_move", "x": -5.0, "y": 0.0}).Success).To(BeTrue())
			Expect(fake.CallsOf("move")[0].X).To(Equal(-5))
		})
	})

	Describe("mouse_click", func() {
		It("clicks once when double is omitted", func() {
			r := tool.Execute(aitools.Payload{"action": "mouse_click", "button": "left"})
			Expect(r.Success).To(BeTrue())
			Expect(content(r)).To(Equal(map[string]any{"clicked": "left", "double": false}))
			Expect(fake.CallsOf("click")).To(HaveLen(1))
			Expect(sleeps).To(BeEmpty())
		})

		It("clicks twice separated by the delay for a double click", func() {
			r := tool.Execute(aitools.Payload{"action": "mouse_click", "button": "right", "double": true})
			Expect(r.Success).To(BeTrue())
			clicks := fake.CallsOf("click")
			Expect(clicks).To(HaveLen(2))
			for _, c := range clicks {
				Expect(c.Button).To(Equal(computer.ButtonRight))
			}
			Expect([]int{clicks[0].Count, clicks[1].Count}).To(Equal([]int{1, 2}))
			Expect(sleeps).To(Equal([]time.Duration{50 * time.Millisecond}))
		})

		It("uses a reconfigured delay", func() {
			Expect(tool.Configure(map[string]string{"double_click_delay": "120ms"})).To(Succeed())
			tool.Execute(aitools.Payload{"action": "mouse_click", "button": "middle", "double": true})
			Expect(sleeps).To(Equal([]time.Duration{120 * time.Millisecond}))
		})

		It("reports an unknown button without touching the backend", func() {
			r := tool.Execute(aitools.Payload{"action": "mouse_click", "button": "thumb"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(Equal("Unknown button: thumb"))
			Expect(fake.Calls()).To(BeEmpty())
		})
	})

	Describe("key_press", func() {
		It("presses a symbolic key", func() {
			r := tool.Execute(aitools.Payload{"action": "key_press", "key": "Enter"})
			Expect(r.Success).To(BeTrue())
			Expect(content(r)).To(HaveKeyWithValue("key_pressed", "Enter"))
			Expect(fake.CallsOf("key")[0].Key).To(Equal(computer.KeyReturn))
		})

		It("reports an unknown key by name", func() {
			r := tool.Execute(aitools.Payload{"action": "key_press", "key": "xyz123"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("xyz123"))
			Expect(fake.Calls()).To(BeEmpty())
		})
	})

	Describe("type_text", func() {
		It("types the literal text", func() {
			r := tool.Execute(aitools.Payload{"action": "type_text", "text": "hello world"})
			Expect(r.Success).To(BeTrue())
			Expect(content(r)).To(HaveKeyWithValue("typed", "hello world"))
			Expect(fake.CallsOf("type")[0].Text).To(Equal("hello world"))
		})

		It("accepts empty text", func() {
			Expect(tool.Execute(aitools.Payload{"action": "type_text", "text": ""}).Success).To(BeTrue())
		})
	})

	Describe("scroll", func() {
		DescribeTable("maps direction to a signed delta",
			func(direction string, amount float64, delta int) {
				r := tool.Execute(aitools.Payload{"action": "scroll", "direction": direction, "amount": amount})
				Expect(r.Success).To(BeTrue())
				Expect(content(r)).To(HaveKeyWithValue("scrolled", map[string]any{"direction": direction, "amount": int(amount)}))
				Expect(fake.CallsOf("scroll")[0].Delta).To(Equal(delta))
			},
			Entry("up is positive", "up", 5.0, 5),
			Entry("down is negative", "down", 5.0, -5),
			Entry("zero amount", "up", 0.0, 0),
		)

		It("reports an unknown direction", func() {
			r := tool.Execute(aitools.Payload{"action": "scroll", "direction": "left", "amount": 1.0})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(Equal("Unknown scroll direction: left"))
			Expect(fake.Calls()).To(BeEmpty())
		})
	})

	Describe("backend failures", func() {
		It("reports backend errors as failed results", func() {
			fake.inputErr = errors.New("display unavailable")
			r := tool.Execute(aitools.Payload{"action": "mouse_move", "x": 1.0, "y": 1.0})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("display unavailable"))
		})

		It("recovers backend panics and keeps the device usable", func() {
			fake.panicMsg = "segfault in driver"
			r := tool.Execute(aitools.Payload{"action": "key_press", "key": "tab"})
			Expect(r.Success).To(BeFalse())
			Expect(r.ErrorMessage()).To(ContainSubstring("segfault in driver"))

			fake.panicMsg = ""
			Expect(tool.Execute(aitools.Payload{"action": "key_press", "key": "tab"}).Success).To(BeTrue())
		})
	})

	Describe("Configure", func() {
		It("rejects an unparsable delay", func() {
			Expect(tool.Configure(map[string]string{"double_click_delay": "soon"})).To(MatchError(ContainSubstring("soon")))
			Expect(tool.DoubleClickDelay()).To(Equal(50 * time.Millisecond))
		})

		It("rejects a non-positive delay", func() {
			Expect(tool.Configure(map[string]string{"double_click_delay": "0s"})).NotTo(Succeed())
		})

		It("ignores unrelated settings", func() {
			Expect(tool.Configure(map[string]string{"theme": "dark"})).To(Succeed())
		})
	})

	Describe("concurrency", func() {
		It("never overlaps input primitives", func() {
			t := computer.NewWithBackend(fake, computer.Options{Sleep: func(time.Duration) {}})
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					var p aitools.Payload
					switch i % 4 {
					case 0:
						p = aitools.Payload{"action": "mouse_move", "x": float64(i), "y": 1.0}
					case 1:
						p = aitools.Payload{"action": "mouse_click", "button": "left", "double": true}
					case 2:
						p = aitools.Payload{"action": "type_text", "text": fmt.Sprintf("t%d", i)}
					default:
						p = aitools.Payload{"action": "screenshot"}
					}
					Expect(t.Execute(p).Success).To(BeTrue())
				}(i)
			}
			wg.Wait()
			Expect(fake.overlaps.Load()).To(BeZero())
			Expect(fake.CallsOf("click")).To(HaveLen(2 * 13))
		})

		It("releases the device during the double-click delay", func() {
			waiting := make(chan struct{})
			release := make(chan struct{})
			t := computer.NewWithBackend(fake, computer.Options{Sleep: func(time.Duration) {
				close(waiting)
				<-release
			}})

			done := make(chan aitools.Result)
			go func() {
				done <- t.Execute(aitools.Payload{"action": "mouse_click", "button": "left", "double": true})
			}()
			Eventually(waiting).Should(BeClosed())

			r := t.Execute(aitools.Payload{"action": "mouse_move", "x": 7.0, "y": 8.0})
			Expect(r.Success).To(BeTrue())

			close(release)
			Eventually(done).Should(Receive(HaveField("Success", BeTrue())))

			ops := []string{}
			for _, c := range fake.Calls() {
				ops = append(ops, c.Op)
			}
			Expect(ops).To(Equal([]string{"click", "move", "click"}))
		})
	})
})

type failingEncoder struct{}

func (failingEncoder) EncodePNG(image.Image) ([]byte, error) {
	return nil, errors.New("encoder broke")
}
