package rental

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InspectionService records condition inspections of returned units
type InspectionService struct {
	scope          appshared.TransactionScope
	inspectionRepo rental.InspectionRepository
	options
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(scope appshared.TransactionScope, inspectionRepo rental.InspectionRepository, opts ...Option) *InspectionService {
	return &InspectionService{
		scope:          scope,
		inspectionRepo: inspectionRepo,
		options:        buildOptions(opts),
	}
}

// Create opens a PENDING inspection of a unit on an open return
func (s *InspectionService) Create(ctx context.Context, req CreateInspectionRequest) (*InspectionResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var report *rental.InspectionReport
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		ret, err := repos.Returns().FindByID(ctx, req.ReturnID)
		if err != nil {
			return err
		}
		if ret.Status.IsTerminal() {
			return shared.NewValidationError("RETURN_CLOSED", "Return "+ret.Number+" is "+string(ret.Status))
		}
		if _, err := ret.LineForUnit(req.InventoryUnitID); err != nil {
			return shared.NewValidationError("UNIT_NOT_ON_RETURN", "Unit is not part of return "+ret.Number)
		}
		in := rental.NewInspectionInput{
			ReturnID:        ret.ID,
			InventoryUnitID: req.InventoryUnitID,
			InspectorID:     req.InspectorID,
			Type:            rental.InspectionType(req.Type),
		}
		if req.InspectionDate != nil {
			in.InspectionDate = *req.InspectionDate
		}
		report, err = rental.NewInspectionReport(in, stamp)
		if err != nil {
			return err
		}
		if err := repos.Inspections().Save(ctx, report); err != nil {
			return err
		}
		t.Track(report)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInspectionResponse(report)
	return &resp, nil
}

// GetByID retrieves an inspection
func (s *InspectionService) GetByID(ctx context.Context, id uuid.UUID) (*InspectionResponse, error) {
	r, err := s.inspectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInspectionResponse(r)
	return &resp, nil
}

// ListByReturn returns the inspections of a return, oldest first
func (s *InspectionService) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]InspectionResponse, error) {
	reports, err := s.inspectionRepo.FindByReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	out := make([]InspectionResponse, len(reports))
	for i := range reports {
		out[i] = ToInspectionResponse(&reports[i])
	}
	return out, nil
}

// Start moves an inspection to IN_PROGRESS
func (s *InspectionService) Start(ctx context.Context, id uuid.UUID) (*InspectionResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.InspectionReport) error {
		return r.Start(w.stamp)
	})
}

// UpdateFindings replaces the recorded findings
func (s *InspectionService) UpdateFindings(ctx context.Context, id uuid.UUID, req FindingsRequest) (*InspectionResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.InspectionReport) error {
		return r.UpdateFindings(rental.Findings{
			DamageLevel:         rental.DamageLevel(req.DamageLevel),
			DamageDescription:   req.DamageDescription,
			RepairEstimate:      req.RepairEstimate,
			ReplacementEstimate: req.ReplacementEstimate,
			Condition:           conditionPtr(req.Condition),
			ChecklistNotes:      req.ChecklistNotes,
		}, w.stamp)
	})
}

// Fail marks an inspection as failed
func (s *InspectionService) Fail(ctx context.Context, id uuid.UUID, req FailInspectionRequest) (*InspectionResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.InspectionReport) error {
		return r.Fail(req.Reason, w.stamp)
	})
}

// Complete closes an inspection and feeds its findings into the matching
// return line while that line is still open.
func (s *InspectionService) Complete(ctx context.Context, id uuid.UUID) (*InspectionResponse, error) {
	assessed := false
	resp, err := s.mutate(ctx, id, func(w work, r *rental.InspectionReport) error {
		if err := r.Complete(w.stamp); err != nil {
			return err
		}
		ret, err := w.repos.Returns().FindByIDForUpdate(w.ctx, r.ReturnID)
		if err != nil {
			return err
		}
		if ret.Status.IsTerminal() {
			return nil
		}
		line, err := ret.LineForUnit(r.InventoryUnitID)
		if err != nil || line.Status == rental.LineProcessed {
			return nil
		}
		if _, err := ret.AssessDamage(line.ID, r.Assessment(), w.stamp); err != nil {
			return err
		}
		if err := w.repos.Returns().SaveWithLock(w.ctx, ret); err != nil {
			return err
		}
		w.t.Track(ret)
		assessed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("inspection completed",
		zap.String("inspection_id", id.String()),
		zap.String("damage_level", resp.DamageLevel),
		zap.Bool("line_assessed", assessed),
	)
	return resp, nil
}

// RequestEvidenceUpload reserves an evidence key on the inspection and
// returns a presigned upload URL for it.
func (s *InspectionService) RequestEvidenceUpload(ctx context.Context, id uuid.UUID, req EvidenceUploadRequest) (*EvidenceURLResponse, error) {
	if s.evidence == nil {
		return nil, shared.NewValidationError("EVIDENCE_STORAGE_DISABLED", "Evidence storage is not configured")
	}
	key := evidenceKey(id, req.FileName)
	url, expiresAt, err := s.evidence.GenerateUploadURL(ctx, key, req.ContentType, s.evidenceTTL)
	if err != nil {
		return nil, fmt.Errorf("generate evidence upload url: %w", err)
	}
	if _, err := s.mutate(ctx, id, func(w work, r *rental.InspectionReport) error {
		return r.AttachEvidence(key, w.stamp)
	}); err != nil {
		return nil, err
	}
	return &EvidenceURLResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// EvidenceURL returns a presigned download URL for an attached evidence key
func (s *InspectionService) EvidenceURL(ctx context.Context, id uuid.UUID, key string) (*EvidenceURLResponse, error) {
	if s.evidence == nil {
		return nil, shared.NewValidationError("EVIDENCE_STORAGE_DISABLED", "Evidence storage is not configured")
	}
	r, err := s.inspectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key = strings.TrimPrefix(key, "/")
	if !r.HasEvidence(key) {
		return nil, shared.NewNotFoundError("EVIDENCE", key)
	}
	url, expiresAt, err := s.evidence.GenerateDownloadURL(ctx, key, s.evidenceTTL)
	if err != nil {
		return nil, fmt.Errorf("generate evidence download url: %w", err)
	}
	return &EvidenceURLResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// evidenceKey is inspections/{inspection}/{random}{ext}
func evidenceKey(inspectionID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("inspections/%s/%s%s", inspectionID, uuid.New(), ext)
}

func (s *InspectionService) mutate(ctx context.Context, id uuid.UUID, fn func(work, *rental.InspectionReport) error) (*InspectionResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var report *rental.InspectionReport
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		r, err := repos.Inspections().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(work{ctx: ctx, repos: repos, t: t, stamp: stamp}, r); err != nil {
			return err
		}
		if err := repos.Inspections().SaveWithLock(ctx, r); err != nil {
			return err
		}
		t.Track(r)
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInspectionResponse(report)
	return &resp, nil
}
