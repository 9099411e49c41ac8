package dto

// RouteQuery is the parsed input of the route endpoints.
type RouteQuery struct {
	CompanyID  int64  `validate:"gt=0"`
	StorageID  *int64 `validate:"omitempty,gt=0"`
	MaterialID *int64 `validate:"required_if=Partial true,omitempty,gt=0"`
	Partial    bool
}

type StopResponse struct {
	StorageID  int64  `json:"storage_id"`
	Name       string `json:"name"`
	LocationID int64  `json:"location_id"`
}

type CounterResponse struct {
	MaterialID int64 `json:"material_id"`
	Available  int   `json:"available"`
}

type RouteResponse struct {
	Distance     int               `json:"distance"`
	Stops        []StopResponse    `json:"stops"`
	Counters     []CounterResponse `json:"counters,omitempty"`
	Accumulation string            `json:"accumulation,omitempty"`
}

type CapacityResponse struct {
	MaterialID int64 `json:"material_id"`
	Used       int   `json:"used"`
	Max        int   `json:"max"`
}

type StorageResponse struct {
	StorageID  int64              `json:"storage_id"`
	Name       string             `json:"name"`
	LocationID int64              `json:"location_id"`
	Materials  []CapacityResponse `json:"materials"`
}

type ListStoragesResponse struct {
	Storages []StorageResponse `json:"storages"`
}
