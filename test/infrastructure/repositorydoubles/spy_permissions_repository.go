//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockupdater/internal/domain/repositories"
)

// SpyPermissionsRepository implements repositories.PermissionsRepository as a configurable spy.
type SpyPermissionsRepository struct {
	Group          string
	DetectErr      error
	AuditProblems  []string
	ReconcileErr   error
	ReconcileCalls int
	LastGroup      string
	LastPaths      []string
}

var _ repositories.PermissionsRepository = (*SpyPermissionsRepository)(nil)

func (s *SpyPermissionsRepository) DetectGroup(_ string) (string, error) {
	return s.Group, s.DetectErr
}

func (s *SpyPermissionsRepository) Audit(_ string, _ []string) []string {
	return s.AuditProblems
}

func (s *SpyPermissionsRepository) Reconcile(_ context.Context, group string, paths []string) error {
	s.ReconcileCalls++
	s.LastGroup = group
	s.LastPaths = paths
	return s.ReconcileErr
}
