package port

import (
	"github.com/vertextoedge/ocs-userinfo/internal/domain/repository"
)

// SnapshotRepository is an alias to domain repository interface
type SnapshotRepository = repository.SnapshotRepository
