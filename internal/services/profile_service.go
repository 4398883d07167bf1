// internal/services/profile_service.go
package services

import (
	"context"
	"fmt"

	"github.com/atommarket/atommarket-backend/internal/chain"
	"github.com/atommarket/atommarket-backend/internal/models"
	"github.com/atommarket/atommarket-backend/internal/utils"
)

type CreateProfileRequest struct {
	ProfileName string `json:"profile_name" validate:"required,min=3,max=100"`
}

// ProfileService fronts the contract's per-address profiles. Profiles are
// created and deleted by explicit owner action only.
type ProfileService struct {
	querier  chain.Querier
	executor chain.Executor
}

func NewProfileService(querier chain.Querier, executor chain.Executor) *ProfileService {
	return &ProfileService{querier: querier, executor: executor}
}

// Fetch returns nil when the address has no profile.
func (s *ProfileService) Fetch(ctx context.Context, address string) (*models.Profile, error) {
	return s.querier.Profile(ctx, address)
}

func (s *ProfileService) Create(ctx context.Context, sender string, req *CreateProfileRequest) (*chain.ExecuteResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	msg := chain.ExecuteMsg{CreateProfile: &chain.CreateProfileMsg{ProfileName: req.ProfileName}}
	return s.executor.Execute(ctx, sender, msg, nil)
}

func (s *ProfileService) Delete(ctx context.Context, sender string) (*chain.ExecuteResult, error) {
	msg := chain.ExecuteMsg{DeleteProfile: &chain.DeleteProfileMsg{}}
	return s.executor.Execute(ctx, sender, msg, nil)
}
