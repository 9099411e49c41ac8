package domain

type (
	LocationID int64
	StorageID  int64
	CompanyID  int64
	MaterialID int64
)

// Represents a node in the road network.
// A Location may host at most one Storage and at most one Company.
type Location struct {
	ID   LocationID
	Name string
}

// Represents a directed, weighted edge between two locations.
// Two-way connectivity is modeled as two Road records.
type Road struct {
	From     LocationID
	To       LocationID
	Distance int
}

// Represents a kind of waste that storages accept and companies produce.
type Material struct {
	ID   MaterialID
	Name string
}
