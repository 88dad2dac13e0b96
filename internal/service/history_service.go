package service

import (
	"context"
	"encoding/json"
	"time"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/contract"

	"gorm.io/datatypes"
)

type IHistoryService interface {
	Create(ctx context.Context, req *dto.HistoryCreateRequest) (*dto.HistoryResponse, error)
	List(ctx context.Context, userID string, limit, offset int) ([]dto.HistoryResponse, error)
}

type historyService struct {
	historyRepo contract.HistoryRepository
}

func NewHistoryService(historyRepo contract.HistoryRepository) IHistoryService {
	return &historyService{historyRepo: historyRepo}
}

func (s *historyService) Create(ctx context.Context, req *dto.HistoryCreateRequest) (*dto.HistoryResponse, error) {
	var result datatypes.JSON
	if req.Result != nil {
		payload, err := json.Marshal(req.Result)
		if err != nil {
			return nil, err
		}
		result = datatypes.JSON(payload)
	}

	row := &model.InteractionHistory{
		UserID:    req.UserID,
		DataType:  req.DataType,
		InputInfo: req.InputInfo,
		Result:    result,
		CreatedAt: time.Now(),
	}
	if err := s.historyRepo.Create(ctx, row); err != nil {
		return nil, err
	}
	return toHistoryResponse(row), nil
}

func (s *historyService) List(ctx context.Context, userID string, limit, offset int) ([]dto.HistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.historyRepo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.HistoryResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toHistoryResponse(&rows[i]))
	}
	return responses, nil
}

func toHistoryResponse(row *model.InteractionHistory) *dto.HistoryResponse {
	var result map[string]interface{}
	if len(row.Result) > 0 {
		_ = json.Unmarshal(row.Result, &result)
	}
	return &dto.HistoryResponse{
		ID:        row.ID.String(),
		UserID:    row.UserID,
		DataType:  row.DataType,
		InputInfo: row.InputInfo,
		Result:    result,
		CreatedAt: row.CreatedAt.Format(time.RFC3339),
	}
}
