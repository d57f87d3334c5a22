package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
)

// Service is the read API over the store/industry catalog. The field app uses
// it to pick a check-in store and the industries a photo can be attributed to.
type Service interface {
	Stores(ctx context.Context) ([]StoreDTO, error)
	Industries(ctx context.Context) ([]IndustryDTO, error)
	StoreIndustries(ctx context.Context, storeID uuid.UUID) (*StoreIndustriesDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Stores(ctx context.Context) ([]StoreDTO, error) {
	stores, err := s.repo.ListActiveStores(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(stores))
	for _, store := range stores {
		out = append(out, StoreDTO{
			ID:      store.ID,
			Name:    store.Name,
			Address: store.Address,
			City:    store.City,
			State:   store.State,
		})
	}
	return out, nil
}

func (s *service) Industries(ctx context.Context) ([]IndustryDTO, error) {
	industries, err := s.repo.ListActiveIndustries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list industries")
	}
	out := make([]IndustryDTO, 0, len(industries))
	for _, industry := range industries {
		out = append(out, IndustryDTO{ID: industry.ID, Name: industry.Name})
	}
	return out, nil
}

// StoreIndustries resolves the store's active industry links against the
// active industry catalog. A link to a deactivated industry is omitted.
func (s *service) StoreIndustries(ctx context.Context, storeID uuid.UUID) (*StoreIndustriesDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.repo.FindStoreByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	links, err := s.repo.ListStoreIndustries(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store industries")
	}
	industries, err := s.repo.ListActiveIndustries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list industries")
	}

	names := make(map[uuid.UUID]string, len(industries))
	for _, industry := range industries {
		names[industry.ID] = industry.Name
	}

	dto := &StoreIndustriesDTO{
		StoreID:    store.ID,
		StoreName:  store.Name,
		Industries: make([]IndustryDTO, 0, len(links)),
	}
	for _, link := range links {
		name, ok := names[link.IndustryID]
		if !ok {
			continue
		}
		dto.Industries = append(dto.Industries, IndustryDTO{ID: link.IndustryID, Name: name})
	}
	return dto, nil
}
