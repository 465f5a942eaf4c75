package service

import (
	"context"
	"time"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"
	"ai-qa-be/pkg/events"

	"github.com/google/uuid"
)

type IFolderService interface {
	GetTree(ctx context.Context) (*dto.FolderTreeResponse, error)
	Create(ctx context.Context, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error)
	Update(ctx context.Context, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteFolderResponse, error)
}

type folderService struct {
	uowFactory unitofwork.RepositoryFactory
	corpus     ICorpusService
	eventPub   events.Publisher
	logger     logger.ILogger
}

func NewFolderService(
	uowFactory unitofwork.RepositoryFactory,
	corpus ICorpusService,
	eventPub events.Publisher,
	log logger.ILogger,
) IFolderService {
	return &folderService{
		uowFactory: uowFactory,
		corpus:     corpus,
		eventPub:   eventPub,
		logger:     log,
	}
}

func (s *folderService) GetTree(ctx context.Context) (*dto.FolderTreeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folders, err := uow.FolderRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	texts, err := uow.TextRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*dto.FolderTreeNode, len(folders))
	for _, f := range folders {
		nodes[f.Id] = &dto.FolderTreeNode{
			Id:        f.Id,
			Name:      f.Name,
			ParentId:  f.ParentId,
			Texts:     make([]*dto.TextSummary, 0),
			Children:  make([]*dto.FolderTreeNode, 0),
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		}
	}

	res := &dto.FolderTreeResponse{
		Folders: make([]*dto.FolderTreeNode, 0),
		Unfiled: make([]*dto.TextSummary, 0),
	}

	for _, f := range folders {
		node := nodes[f.Id]
		if f.ParentId != nil {
			if parent, ok := nodes[*f.ParentId]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		res.Folders = append(res.Folders, node)
	}

	for _, t := range texts {
		summary := toTextSummary(t)
		if t.FolderId != nil {
			if node, ok := nodes[*t.FolderId]; ok {
				node.Texts = append(node.Texts, summary)
				continue
			}
		}
		res.Unfiled = append(res.Unfiled, summary)
	}

	return res, nil
}

func (s *folderService) Create(ctx context.Context, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.ParentId != nil {
		parent, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: *req.ParentId})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
	}

	folder := entity.Folder{
		Id:        uuid.New(),
		Name:      req.Name,
		ParentId:  req.ParentId,
		CreatedAt: time.Now(),
	}
	if err := uow.FolderRepository().Create(ctx, &folder); err != nil {
		return nil, err
	}

	return &dto.CreateFolderResponse{Id: folder.Id}, nil
}

func (s *folderService) Update(ctx context.Context, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}

	if req.ParentId != nil {
		subtree, err := s.subtree(ctx, uow, folder.Id)
		if err != nil {
			return nil, err
		}
		for _, id := range subtree {
			if id == *req.ParentId {
				return nil, ErrFolderCycle
			}
		}

		parent, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: *req.ParentId})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
	}

	now := time.Now()
	folder.Name = req.Name
	folder.ParentId = req.ParentId
	folder.UpdatedAt = &now

	if err := uow.FolderRepository().Update(ctx, folder); err != nil {
		return nil, err
	}

	return &dto.UpdateFolderResponse{Id: folder.Id}, nil
}

// subtree returns root and every folder below it, breadth first.
func (s *folderService) subtree(ctx context.Context, uow unitofwork.UnitOfWork, root uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{root}
	level := []uuid.UUID{root}
	for len(level) > 0 {
		children, err := uow.FolderRepository().FindAll(ctx, specification.ByParentIDs{ParentIDs: level})
		if err != nil {
			return nil, err
		}
		level = level[:0:0]
		for _, c := range children {
			ids = append(ids, c.Id)
			level = append(level, c.Id)
		}
	}
	return ids, nil
}

func (s *folderService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteFolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}

	folderIds, err := s.subtree(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	texts, err := uow.TextRepository().FindAll(ctx, specification.ByFolderIDs{FolderIDs: folderIds})
	if err != nil {
		return nil, err
	}
	embeddingIds := make([]uuid.UUID, 0, len(texts))
	for _, t := range texts {
		if t.EmbeddingId != nil {
			embeddingIds = append(embeddingIds, *t.EmbeddingId)
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.TextRepository().DeleteByFolderIds(ctx, folderIds); err != nil {
		return nil, err
	}
	if err := uow.EmbeddingRepository().DeleteByIds(ctx, embeddingIds); err != nil {
		return nil, err
	}
	if err := uow.FolderRepository().DeleteByIds(ctx, folderIds); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("FOLDER", "Folder tree deleted", map[string]interface{}{
		"folder_id":  id.String(),
		"folders":    len(folderIds),
		"texts":      len(texts),
		"embeddings": len(embeddingIds),
	})
	corpusChanged(ctx, s.corpus, s.eventPub, s.logger, events.NewFolderDeleted(folderIds, len(texts)))

	return &dto.DeleteFolderResponse{
		FolderCount: len(folderIds),
		TextCount:   len(texts),
	}, nil
}

func toTextSummary(t *entity.Text) *dto.TextSummary {
	return &dto.TextSummary{
		Id:        t.Id,
		Name:      t.Name,
		Indexed:   t.EmbeddingId != nil,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
