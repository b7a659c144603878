// Package assignmentrepo persists delivery assignments with GORM and
// implements the conditional writes of the claim protocol.
package assignmentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AssignmentDTO represents the database structure for persisting assignments.
// The order id is the primary key, so an order has at most one assignment.
type AssignmentDTO struct {
	OrderID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CandidateDriverIDs pq.StringArray `gorm:"type:text[];not null"`
	CommittedDriverID  *uuid.UUID     `gorm:"type:uuid;index"`
	Status             string         `gorm:"type:varchar(16);not null;index"`

	Pickup  StopDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff StopDTO `gorm:"embedded;embeddedPrefix:dropoff_"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (AssignmentDTO) TableName() string {
	return "delivery_assignments"
}

// StopDTO stores an address with optional coordinates.
type StopDTO struct {
	Address string `gorm:"type:text;not null"`
	Lat     *float64
	Lng     *float64
}

func fromDomain(aggregate *delivery.Assignment) AssignmentDTO {
	candidates := make(pq.StringArray, 0, len(aggregate.Candidates()))
	for _, id := range aggregate.Candidates() {
		candidates = append(candidates, id.String())
	}

	var committed *uuid.UUID
	if id := aggregate.CommittedDriverID(); id != nil {
		raw := id.Bytes()
		committed = &raw
	}

	return AssignmentDTO{
		OrderID:            aggregate.OrderID().Bytes(),
		CandidateDriverIDs: candidates,
		CommittedDriverID:  committed,
		Status:             aggregate.Status().String(),
		Pickup:             stopFromDomain(aggregate.Pickup()),
		Dropoff:            stopFromDomain(aggregate.Dropoff()),
		CreatedAt:          aggregate.CreatedAt(),
		UpdatedAt:          aggregate.UpdatedAt(),
	}
}

func stopFromDomain(stop delivery.Stop) StopDTO {
	dto := StopDTO{Address: stop.Address}
	if stop.Location != nil {
		lat, lng := stop.Location.Lat(), stop.Location.Lng()
		dto.Lat = &lat
		dto.Lng = &lng
	}
	return dto
}

func toDomain(dto AssignmentDTO) (*delivery.Assignment, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	candidates := make([]kernel.UUID, 0, len(dto.CandidateDriverIDs))
	for _, raw := range dto.CandidateDriverIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, id)
	}

	var committed *kernel.UUID
	if dto.CommittedDriverID != nil {
		id, err := kernel.UUIDFromBytes((*dto.CommittedDriverID)[:])
		if err != nil {
			return nil, err
		}
		committed = &id
	}

	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	pickup, err := stopToDomain(dto.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := stopToDomain(dto.Dropoff)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreAssignment(
		orderID,
		candidates,
		committed,
		status,
		pickup,
		dropoff,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
	)
}

func stopToDomain(dto StopDTO) (delivery.Stop, error) {
	stop := delivery.Stop{Address: dto.Address}
	if dto.Lat != nil && dto.Lng != nil {
		loc, err := kernel.NewLocation(*dto.Lat, *dto.Lng)
		if err != nil {
			return delivery.Stop{}, err
		}
		stop.Location = &loc
	}
	return stop, nil
}
