package dto

type UnloadRequest struct {
	MaterialID *int64 `json:"material_id" validate:"required_if=Partial true,omitempty,gt=0"`
	Partial    bool   `json:"partial"`
}

type StorageUpdateResponse struct {
	StorageID  int64 `json:"storage_id"`
	MaterialID int64 `json:"material_id"`
	Used       int   `json:"used"`
}

type CompanyUpdateResponse struct {
	CompanyID  int64 `json:"company_id"`
	MaterialID int64 `json:"material_id"`
	Amount     int   `json:"amount"`
}

type UnloadResponse struct {
	Route          RouteResponse           `json:"route"`
	StorageUpdates []StorageUpdateResponse `json:"storage_updates"`
	CompanyUpdates []CompanyUpdateResponse `json:"company_updates"`
	// Remainder is set for partial unloads only. It is computed from nominal
	// free space and may be negative.
	Remainder *int `json:"remainder,omitempty"`
	Attempts  int  `json:"attempts"`
}
