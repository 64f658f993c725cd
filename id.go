package routeplanner

import "github.com/reecejunior/newrouteplanner/id"

// ID is the primary identifier type for all route planner entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
