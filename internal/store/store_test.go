package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

type recorder struct {
	mu   sync.Mutex
	docs []store.Document
}

func (r *recorder) listen(_ context.Context, doc store.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

func (r *recorder) bodies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, string(d.Body))
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

var _ = Describe("Hub", func() {
	var (
		hub *store.Hub
		ctx context.Context
	)

	BeforeEach(func() {
		hub = store.NewHub(testLogger)
		ctx = context.Background()
	})

	It("delivers a missing document on subscribe", func() {
		rec := &recorder{}
		_, err := hub.Subscribe(ctx, store.KeyUserRules, rec.listen)
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.count()).To(Equal(1))
		Expect(rec.docs[0].Exists).To(BeFalse())
		Expect(rec.docs[0].Key).To(Equal(store.KeyUserRules))
	})

	It("delivers the current value and then every change in order", func() {
		Expect(hub.Publish(ctx, store.KeyReports, json.RawMessage(`{"v":1}`))).To(Succeed())

		rec := &recorder{}
		_, err := hub.Subscribe(ctx, store.KeyReports, rec.listen)
		Expect(err).NotTo(HaveOccurred())

		Expect(hub.Publish(ctx, store.KeyReports, json.RawMessage(`{"v":2}`))).To(Succeed())
		Expect(hub.Publish(ctx, store.KeyReports, json.RawMessage(`{"v":3}`))).To(Succeed())

		Expect(rec.bodies()).To(Equal([]string{`{"v":1}`, `{"v":2}`, `{"v":3}`}))
	})

	It("keeps keys apart", func() {
		rec := &recorder{}
		_, err := hub.Subscribe(ctx, store.KeyUserRules, rec.listen)
		Expect(err).NotTo(HaveOccurred())

		Expect(hub.Publish(ctx, store.KeyReports, json.RawMessage(`{}`))).To(Succeed())
		Expect(rec.count()).To(Equal(1))
	})

	It("stops delivering after Unsubscribe and forgets the subscription", func() {
		rec := &recorder{}
		sub, err := hub.Subscribe(ctx, store.KeyUserRules, rec.listen)
		Expect(err).NotTo(HaveOccurred())
		Expect(hub.Subscribers(store.KeyUserRules)).To(Equal(1))

		sub.Unsubscribe()
		sub.Unsubscribe()
		Expect(hub.Subscribers(store.KeyUserRules)).To(Equal(0))

		Expect(hub.Publish(ctx, store.KeyUserRules, json.RawMessage(`{"v":1}`))).To(Succeed())
		Expect(rec.count()).To(Equal(1))
	})

	It("serializes concurrent publishers so every subscriber sees the same order", func() {
		first, second := &recorder{}, &recorder{}
		_, err := hub.Subscribe(ctx, store.KeyUserRules, first.listen)
		Expect(err).NotTo(HaveOccurred())
		_, err = hub.Subscribe(ctx, store.KeyUserRules, second.listen)
		Expect(err).NotTo(HaveOccurred())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				body, _ := json.Marshal(map[string]int{"v": i})
				_ = hub.Publish(ctx, store.KeyUserRules, body)
			}(i)
		}
		wg.Wait()

		Expect(first.count()).To(Equal(21))
		Expect(first.bodies()).To(Equal(second.bodies()))
	})

	It("hands each listener its own copy of the body", func() {
		Expect(hub.Publish(ctx, store.KeyReports, json.RawMessage(`{"a":1}`))).To(Succeed())

		_, err := hub.Subscribe(ctx, store.KeyReports, func(_ context.Context, doc store.Document) {
			doc.Body[0] = 'X'
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(hub.Current(store.KeyReports).Body)).To(Equal(`{"a":1}`))
	})
})

var _ = Describe("Persistent", func() {
	var (
		ctrl *gomock.Controller
		repo *mocks.MockRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		repo = mocks.NewMockRepository(ctrl)
		ctx = context.Background()
	})

	It("loads the stored document on first subscribe only", func() {
		repo.EXPECT().Get(gomock.Any(), store.KeyUserRules).Return(store.Document{
			Key:    store.KeyUserRules,
			Body:   json.RawMessage(`{"roles":{}}`),
			Exists: true,
		}, nil).Times(1)

		p := store.NewPersistent(repo, testLogger)
		first, second := &recorder{}, &recorder{}
		_, err := p.Subscribe(ctx, store.KeyUserRules, first.listen)
		Expect(err).NotTo(HaveOccurred())
		_, err = p.Subscribe(ctx, store.KeyUserRules, second.listen)
		Expect(err).NotTo(HaveOccurred())

		Expect(first.bodies()).To(Equal([]string{`{"roles":{}}`}))
		Expect(second.bodies()).To(Equal([]string{`{"roles":{}}`}))
	})

	It("fails the subscription when the document cannot be loaded", func() {
		repo.EXPECT().Get(gomock.Any(), store.KeyReports).Return(store.Document{}, errors.New("connection refused"))

		p := store.NewPersistent(repo, testLogger)
		_, err := p.Subscribe(ctx, store.KeyReports, (&recorder{}).listen)
		Expect(err).To(HaveOccurred())
	})

	It("returns a WriteError and delivers nothing when the upsert fails", func() {
		repo.EXPECT().Get(gomock.Any(), store.KeyReports).Return(store.Document{Key: store.KeyReports}, nil)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		p := store.NewPersistent(repo, testLogger)
		rec := &recorder{}
		_, err := p.Subscribe(ctx, store.KeyReports, rec.listen)
		Expect(err).NotTo(HaveOccurred())

		err = p.Publish(ctx, store.KeyReports, json.RawMessage(`{"enabledReports":{}}`))
		Expect(internal.IsWriteError(err)).To(BeTrue())
		Expect(rec.count()).To(Equal(1))
	})

	It("rejects bodies that are not JSON", func() {
		p := store.NewPersistent(repo, testLogger)
		err := p.Publish(ctx, store.KeyReports, json.RawMessage(`{`))
		Expect(internal.IsWriteError(err)).To(BeTrue())
	})

	It("does not redeliver its own write when refreshed", func() {
		var saved store.Document
		repo.EXPECT().Get(gomock.Any(), store.KeyReports).Return(store.Document{Key: store.KeyReports}, nil)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc store.Document) error {
			saved = doc
			return nil
		})

		p := store.NewPersistent(repo, testLogger)
		rec := &recorder{}
		_, err := p.Subscribe(ctx, store.KeyReports, rec.listen)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Publish(ctx, store.KeyReports, json.RawMessage(`{"enabledReports":{"stock":false}}`))).To(Succeed())

		repo.EXPECT().Get(gomock.Any(), store.KeyReports).Return(saved, nil)
		Expect(p.Refresh(ctx, store.KeyReports)).To(Succeed())

		Expect(rec.count()).To(Equal(2))
	})
})
