package assignmentrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const driversTable = "drivers"

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add stores a new assignment. A second assignment for the same order
// inserts nothing and returns delivery.ErrAlreadyDispatched.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *delivery.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return delivery.ErrAlreadyDispatched
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Update writes status and timestamp. It refuses to touch closed rows and
// rows whose committed driver changed since the aggregate was read, so a
// cancel working from a pending copy cannot close an offer another
// transaction just claimed.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *delivery.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	query := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("order_id = ?", dto.OrderID).
		Where("status NOT IN ?", closedStatuses())
	if dto.CommittedDriverID == nil {
		query = query.Where("committed_driver_id IS NULL")
	} else {
		query = query.Where("committed_driver_id = ?", *dto.CommittedDriverID)
	}

	result := query.Updates(map[string]any{
		"status":     dto.Status,
		"updated_at": dto.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.staleWrite(ctx, aggregate)
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Get retrieves the assignment of an order.
func (r *GormAssignmentRepository) Get(ctx context.Context, orderID kernel.UUID) (*delivery.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Claim commits the aggregate's driver. Both statements are conditional, so
// among concurrent claimers only the first to write sees a matched row; the
// others block on the row lock and then match nothing.
func (r *GormAssignmentRepository) Claim(ctx context.Context, aggregate *delivery.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	driverID := aggregate.CommittedDriverID()
	if driverID == nil || aggregate.Status() != delivery.Accepted {
		return errs.NewValueIsRequiredErrorWithCause("committedDriverId",
			errors.New("only an accepted assignment can be claimed"))
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&AssignmentDTO{}).
		Where("order_id = ?", dto.OrderID).
		Where("committed_driver_id IS NULL").
		Where("status = ?", delivery.Pending.String()).
		Where("? = ANY(candidate_driver_ids)", driverID.String()).
		Updates(map[string]any{
			"committed_driver_id": dto.CommittedDriverID,
			"status":              dto.Status,
			"updated_at":          dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return delivery.ErrAssignmentAlreadyClaimed
	}

	result = db.Table(driversTable).
		Where("id = ?", driverID.Bytes()).
		Where("available = ?", true).
		Updates(map[string]any{
			"available":  false,
			"updated_at": dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return delivery.ErrDriverUnavailable
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Release writes the closed status and hands the committed driver back to
// the pool. The driver row is updated unconditionally; a driver who went off
// shift while delivering becomes available again and can toggle off later.
func (r *GormAssignmentRepository) Release(ctx context.Context, aggregate *delivery.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !aggregate.Status().IsClosed() {
		return errs.NewIllegalTransitionError("assignment", aggregate.Status().String(), "released")
	}

	if err := r.Update(ctx, aggregate); err != nil {
		return err
	}

	driverID := aggregate.CommittedDriverID()
	if driverID == nil {
		return nil
	}

	return r.db.WithContext(ctx).
		Table(driversTable).
		Where("id = ?", driverID.Bytes()).
		Updates(map[string]any{
			"available":  true,
			"updated_at": aggregate.UpdatedAt(),
		}).Error
}

// HasActiveForDriver reports whether driverID holds an accepted or picked up assignment.
func (r *GormAssignmentRepository) HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error) {
	if err := driverID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("committed_driver_id = ?", driverID.Bytes()).
		Where("status IN ?", []string{delivery.Accepted.String(), delivery.PickedUp.String()}).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// staleWrite explains an Update that matched no row.
func (r *GormAssignmentRepository) staleWrite(ctx context.Context, aggregate *delivery.Assignment) error {
	current, err := r.Get(ctx, aggregate.OrderID())
	if err != nil {
		return err
	}
	return errs.NewIllegalTransitionError("assignment", current.Status().String(), aggregate.Status().String())
}

func closedStatuses() []string {
	return []string{delivery.Delivered.String(), delivery.Cancelled.String()}
}
