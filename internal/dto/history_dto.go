package dto

type HistoryCreateRequest struct {
	UserID    string                 `json:"user_id" validate:"required"`
	DataType  string                 `json:"data_type" validate:"required,oneof=image audio text video"`
	InputInfo string                 `json:"input_info,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
}

type HistoryResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	DataType  string                 `json:"data_type"`
	InputInfo string                 `json:"input_info,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
	CreatedAt string                 `json:"created_at"`
}
