package store_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deskctl/aitools"
	"deskctl/config"
	"deskctl/registry"
	"deskctl/store"
)

func invocation(id, tool string, success bool) registry.Invocation {
	inv := registry.Invocation{
		ID:        id,
		Tool:      tool,
		Payload:   aitools.Payload{"action": "mouse_move", "x": 10, "y": 20},
		Success:   success,
		Duration:  1500 * time.Microsecond,
		CreatedAt: time.Now(),
	}
	if !success {
		inv.Error = "Unknown key: hyper"
	}
	return inv
}

var _ = Describe("Journal", func() {
	runJournalTests := func(newJournal func() (store.Journal, func())) {
		var (
			journal store.Journal
			cleanup func()
		)

		BeforeEach(func() {
			journal, cleanup = newJournal()
		})

		AfterEach(func() {
			cleanup()
		})

		It("stores and retrieves an invocation by id", func() {
			inv := invocation("inv-1", "computer_control", true)
			Expect(journal.Record(inv)).To(Succeed())

			got, err := journal.Get("inv-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("inv-1"))
			Expect(got.Tool).To(Equal("computer_control"))
			Expect(got.Success).To(BeTrue())
			Expect(got.Error).To(BeEmpty())
			Expect(got.Duration).To(Equal(1500 * time.Microsecond))
			Expect(got.CreatedAt).To(BeTemporally("~", inv.CreatedAt, time.Second))
			Expect(got.Payload).To(HaveKeyWithValue("action", "mouse_move"))
			Expect(got.Payload).To(HaveKeyWithValue("x", json.Number("10")))
		})

		It("keeps the error of failed invocations", func() {
			Expect(journal.Record(invocation("inv-f", "computer_control", false))).To(Succeed())
			got, err := journal.Get("inv-f")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Success).To(BeFalse())
			Expect(got.Error).To(Equal("Unknown key: hyper"))
		})

		It("records nil payloads as empty objects", func() {
			inv := invocation("inv-nil", "t", true)
			inv.Payload = nil
			Expect(journal.Record(inv)).To(Succeed())
			got, err := journal.Get("inv-nil")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Payload).To(BeEmpty())
		})

		It("rejects duplicate ids", func() {
			Expect(journal.Record(invocation("dup", "t", true))).To(Succeed())
			Expect(journal.Record(invocation("dup", "t", true))).NotTo(Succeed())
		})

		It("returns ErrNotFound for unknown ids", func() {
			_, err := journal.Get("missing")
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})

		It("lists newest first", func() {
			for i := 0; i < 3; i++ {
				Expect(journal.Record(invocation(fmt.Sprintf("inv-%d", i), "computer_control", true))).To(Succeed())
			}
			results, err := journal.List("", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ID).To(Equal("inv-2"))
			Expect(results[2].ID).To(Equal("inv-0"))
		})

		It("filters by tool", func() {
			Expect(journal.Record(invocation("a", "computer_control", true))).To(Succeed())
			Expect(journal.Record(invocation("b", "pinger__ping", true))).To(Succeed())
			Expect(journal.Record(invocation("c", "computer_control", false))).To(Succeed())

			results, err := journal.List("computer_control", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("c"))
			Expect(results[1].ID).To(Equal("a"))
		})

		It("paginates with limit and offset", func() {
			for i := 0; i < 5; i++ {
				Expect(journal.Record(invocation(fmt.Sprintf("inv-%d", i), "t", true))).To(Succeed())
			}

			// Get first 2
			results, err := journal.List("t", 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("inv-4"))

			// Get next 2
			results, err = journal.List("t", 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("inv-2"))

			// Get last 1
			results, err = journal.List("t", 2, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("inv-0"))
		})

		It("returns empty slice when nothing matches", func() {
			results, err := journal.List("nonexistent", 100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
			Expect(results).NotTo(BeNil())
		})

		It("serves as the registry recorder", func() {
			reg := registry.New(registry.Options{Recorder: journal})
			Expect(reg.Register(&stubTool{})).To(Succeed())
			_, err := reg.Call("stub", aitools.Payload{"q": "x"})
			Expect(err).NotTo(HaveOccurred())

			results, err := journal.List("stub", 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Payload).To(HaveKeyWithValue("q", "x"))
		})
	}

	Context("Memory backend", func() {
		runJournalTests(func() (store.Journal, func()) {
			return store.NewMemoryJournal(), func() {}
		})
	})

	Context("SQLite backend", func() {
		runJournalTests(func() (store.Journal, func()) {
			dir, err := os.MkdirTemp("", "store-test-*")
			Expect(err).NotTo(HaveOccurred())

			dbPath := filepath.Join(dir, "test.db")
			journal, err := store.NewSQLiteJournal(dbPath)
			Expect(err).NotTo(HaveOccurred())

			return journal, func() {
				journal.Close()
				os.RemoveAll(dir)
			}
		})
	})
})

var _ = Describe("NewJournal", func() {
	It("defaults to memory", func() {
		j, err := store.NewJournal(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(j).To(BeAssignableToTypeOf(&store.MemoryJournal{}))
	})

	It("creates the sqlite directory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "nested", "dir", "journal.db")
		j, err := store.NewJournal(&config.StorageConfig{Backend: "sqlite", Path: path})
		Expect(err).NotTo(HaveOccurred())
		defer j.Close()
		Expect(filepath.Dir(path)).To(BeADirectory())
	})

	It("persists across reopen", func() {
		path := filepath.Join(GinkgoT().TempDir(), "journal.db")
		j, err := store.NewSQLiteJournal(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(j.Record(invocation("kept", "t", true))).To(Succeed())
		Expect(j.Close()).To(Succeed())

		j, err = store.NewSQLiteJournal(path)
		Expect(err).NotTo(HaveOccurred())
		defer j.Close()
		got, err := j.Get("kept")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Tool).To(Equal("t"))
	})

	It("rejects unknown backends", func() {
		_, err := store.NewJournal(&config.StorageConfig{Backend: "redis"})
		Expect(err).To(HaveOccurred())
	})
})

type stubTool struct{}

func (stubTool) ToolName() string                  { return "stub" }
func (stubTool) ToolDescription() string           { return "stub tool" }
func (stubTool) ToolPayloadSchema() aitools.Schema { return aitools.Schema{Type: aitools.TypeObject} }
func (stubTool) Execute(p aitools.Payload) aitools.Result {
	return aitools.Succeeded(nil)
}
