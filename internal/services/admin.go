package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"waste-bknd/internal/models"
	"waste-bknd/internal/store"
)

// CreatePanchayatInput is the create body. Population and area accept
// numbers or numeric strings.
type CreatePanchayatInput struct {
	Name       string      `json:"name"`
	Code       string      `json:"code"`
	BlockID    string      `json:"blockId"`
	Population interface{} `json:"population"`
	Area       interface{} `json:"area"`
}

type AdminService struct {
	store AdminStore
	logr  *zap.Logger
}

func NewAdminService(st AdminStore, logr *zap.Logger) *AdminService {
	return &AdminService{store: st, logr: logr.Named("admin")}
}

func (s *AdminService) ListZillas(ctx context.Context) ([]*models.ZillaPanchayat, error) {
	out, err := s.store.ListZillas(ctx)
	if out == nil && err == nil {
		out = []*models.ZillaPanchayat{}
	}
	return out, err
}

func (s *AdminService) ListBlocks(ctx context.Context, zillaID string) ([]*models.Block, error) {
	out, err := s.store.ListBlocks(ctx, zillaID)
	if out == nil && err == nil {
		out = []*models.Block{}
	}
	return out, err
}

func (s *AdminService) ListPanchayats(ctx context.Context, blockID string) ([]*models.GramPanchayat, error) {
	out, err := s.store.ListPanchayats(ctx, blockID)
	if out == nil && err == nil {
		out = []*models.GramPanchayat{}
	}
	return out, err
}

func (s *AdminService) ListWards(ctx context.Context, panchayatID string) ([]*models.Ward, error) {
	out, err := s.store.ListWards(ctx, panchayatID)
	if out == nil && err == nil {
		out = []*models.Ward{}
	}
	return out, err
}

func (s *AdminService) ListCollectors(ctx context.Context, f models.CollectorFilter) ([]*models.Collector, error) {
	if f.Role != "" {
		f.Role = models.CollectorRole(strings.ToUpper(string(f.Role)))
		if !f.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidFilter, f.Role)
		}
	}
	out, err := s.store.ListCollectors(ctx, f)
	if out == nil && err == nil {
		out = []*models.Collector{}
	}
	return out, err
}

// CreatePanchayat validates and inserts a panchayat under an existing block.
func (s *AdminService) CreatePanchayat(ctx context.Context, in CreatePanchayatInput) (*models.GramPanchayat, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	in.BlockID = strings.TrimSpace(in.BlockID)
	if in.Name == "" || in.Code == "" || in.BlockID == "" {
		return nil, ErrMissingFields
	}

	p := &models.GramPanchayat{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Code:    in.Code,
		BlockID: in.BlockID,
	}

	if present(in.Population) {
		pop, err := cast.ToIntE(in.Population)
		if err != nil {
			return nil, fmt.Errorf("%w: population must be a whole number", ErrInvalidInput)
		}
		p.Population = &pop
	}
	if present(in.Area) {
		area, err := cast.ToFloat64E(in.Area)
		if err != nil {
			return nil, fmt.Errorf("%w: area must be a number", ErrInvalidInput)
		}
		p.Area = &area
	}

	created, err := s.store.CreatePanchayat(ctx, p)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, ErrDuplicateCode
	case errors.Is(err, store.ErrForeignKey):
		return nil, ErrBlockNotFound
	case err != nil:
		return nil, err
	}

	s.logr.Info("panchayat created",
		zap.String("id", created.ID),
		zap.String("code", created.Code),
		zap.String("block_id", created.BlockID))
	return created, nil
}

// present treats null and blank strings as absent.
func present(v interface{}) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}
