package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/repository/contract"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/embedding"
	"ai-qa-be/pkg/events"
	"ai-qa-be/pkg/llm"

	"github.com/google/uuid"
)

// memoryDB backs every fake repository. Transactions are not isolated.
type memoryDB struct {
	mu         sync.Mutex
	folders    map[uuid.UUID]*entity.Folder
	texts      map[uuid.UUID]*entity.Text
	embeddings map[uuid.UUID]*entity.Embedding
	accounts   map[uuid.UUID]*entity.Account
	commits    int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		folders:    map[uuid.UUID]*entity.Folder{},
		texts:      map[uuid.UUID]*entity.Text{},
		embeddings: map[uuid.UUID]*entity.Embedding{},
		accounts:   map[uuid.UUID]*entity.Account{},
	}
}

func (db *memoryDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUow{db: db}
}

type memoryUow struct {
	db *memoryDB
	tx bool
}

func (u *memoryUow) Begin(ctx context.Context) error { u.tx = true; return nil }
func (u *memoryUow) Commit() error {
	if u.tx {
		u.db.mu.Lock()
		u.db.commits++
		u.db.mu.Unlock()
	}
	u.tx = false
	return nil
}
func (u *memoryUow) Rollback() error { u.tx = false; return nil }

func (u *memoryUow) AccountRepository() contract.AccountRepository     { return accountRepo{u.db} }
func (u *memoryUow) FolderRepository() contract.FolderRepository       { return folderRepo{u.db} }
func (u *memoryUow) TextRepository() contract.TextRepository           { return textRepo{u.db} }
func (u *memoryUow) EmbeddingRepository() contract.EmbeddingRepository { return embeddingRepo{u.db} }

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type textRepo struct{ db *memoryDB }

func (r textRepo) match(t *entity.Text, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if t.Id != s.ID {
				return false
			}
		case specification.ByEmbeddingID:
			if t.EmbeddingId == nil || *t.EmbeddingId != s.EmbeddingID {
				return false
			}
		case specification.ByFolderID:
			if !sameParent(t.FolderId, s.FolderID) {
				return false
			}
		case specification.ByFolderIDs:
			if t.FolderId == nil || !containsID(s.FolderIDs, *t.FolderId) {
				return false
			}
		}
	}
	return true
}

func (r textRepo) Create(ctx context.Context, text *entity.Text) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *text
	r.db.texts[text.Id] = &c
	return nil
}

func (r textRepo) Update(ctx context.Context, text *entity.Text) error { return r.Create(ctx, text) }

func (r textRepo) SetEmbeddingId(ctx context.Context, id uuid.UUID, embeddingId *uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if t, ok := r.db.texts[id]; ok {
		t.EmbeddingId = embeddingId
	}
	return nil
}

func (r textRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.texts, id)
	return nil
}

func (r textRepo) DeleteByFolderIds(ctx context.Context, folderIds []uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, t := range r.db.texts {
		if t.FolderId != nil && containsID(folderIds, *t.FolderId) {
			delete(r.db.texts, id)
		}
	}
	return nil
}

func (r textRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Text, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r textRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Text, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res := make([]*entity.Text, 0)
	for _, t := range r.db.texts {
		if r.match(t, specs) {
			c := *t
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r textRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type folderRepo struct{ db *memoryDB }

func (r folderRepo) Create(ctx context.Context, folder *entity.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *folder
	r.db.folders[folder.Id] = &c
	return nil
}

func (r folderRepo) Update(ctx context.Context, folder *entity.Folder) error {
	return r.Create(ctx, folder)
}

func (r folderRepo) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.folders, id)
	}
	return nil
}

func (r folderRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Folder, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r folderRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res := make([]*entity.Folder, 0)
	for _, f := range r.db.folders {
		ok := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				ok = ok && f.Id == s.ID
			case specification.ByParentID:
				ok = ok && sameParent(f.ParentId, s.ParentID)
			case specification.ByParentIDs:
				ok = ok && f.ParentId != nil && containsID(s.ParentIDs, *f.ParentId)
			}
		}
		if ok {
			c := *f
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r folderRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type embeddingRepo struct{ db *memoryDB }

func (r embeddingRepo) Create(ctx context.Context, e *entity.Embedding) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *e
	r.db.embeddings[e.Id] = &c
	return nil
}

func (r embeddingRepo) Update(ctx context.Context, e *entity.Embedding) error {
	return r.Create(ctx, e)
}

func (r embeddingRepo) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.embeddings, id)
	}
	return nil
}

func (r embeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, spec := range specs {
		if s, ok := spec.(specification.ByID); ok {
			if e, ok := r.db.embeddings[s.ID]; ok {
				c := *e
				return &c, nil
			}
		}
	}
	return nil, nil
}

func (r embeddingRepo) ListAll(ctx context.Context) ([]*entity.Embedding, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res := make([]*entity.Embedding, 0, len(r.db.embeddings))
	for _, e := range r.db.embeddings {
		c := *e
		res = append(res, &c)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].Id.String() < res[j].Id.String()
	})
	return res, nil
}

func (r embeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.embeddings)), nil
}

type accountRepo struct{ db *memoryDB }

func (r accountRepo) Create(ctx context.Context, a *entity.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *a
	r.db.accounts[a.Id] = &c
	return nil
}

func (r accountRepo) Update(ctx context.Context, a *entity.Account) error { return r.Create(ctx, a) }

func (r accountRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		ok := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				ok = ok && a.Id == s.ID
			case specification.ByEmail:
				ok = ok && a.Email == s.Email
			case specification.ByGoogleID:
				ok = ok && a.GoogleId == s.GoogleID
			}
		}
		if ok {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

// recordingPublisher captures index requests.
type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEvents) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// countingCorpus records invalidations on top of a real corpus service.
type countingCorpus struct {
	ICorpusService
	invalidations int
}

func (c *countingCorpus) Invalidate() {
	c.invalidations++
	c.ICorpusService.Invalidate()
}

// tableEmbedder returns fixed vectors by text.
type tableEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   []string
	err     error
}

func (e *tableEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, text)
	if e.err != nil {
		return nil, e.err
	}
	v, ok := e.vectors[text]
	if !ok {
		v = []float32{0, 0, 1}
	}
	return &embedding.EmbeddingResponse{Values: v}, nil
}

func (e *tableEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// scriptedLLM answers Chat from a queue and streams fixed fragments.
type scriptedLLM struct {
	mu        sync.Mutex
	replies   []string
	fragments []string
	histories [][]llm.Message
	options   []*llm.Options
}

func (m *scriptedLLM) record(history []llm.Message, opts []llm.Option) {
	m.histories = append(m.histories, history)
	m.options = append(m.options, llm.ApplyOptions(opts...))
}

func (m *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(history, opts)
	if len(m.replies) == 0 {
		return "", nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(history, opts)
	return &sliceStream{fragments: append([]string(nil), m.fragments...)}, nil
}

func (m *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

type sliceStream struct {
	fragments []string
	closed    bool
}

func (s *sliceStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", io.EOF
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}
