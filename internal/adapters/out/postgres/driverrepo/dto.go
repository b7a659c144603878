// Package driverrepo persists driver aggregates with GORM.
package driverrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure for persisting drivers.
// LocationLat and LocationLng are both NULL until the first location report.
type DriverDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Phone         string    `gorm:"type:varchar(64);not null"`
	Email         string    `gorm:"type:varchar(255);not null"`
	VehicleType   string    `gorm:"type:varchar(64);not null"`
	VehicleNumber string    `gorm:"type:varchar(64);not null"`
	LocationLat   *float64
	LocationLng   *float64
	Available     bool      `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(aggregate *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:            aggregate.ID().Bytes(),
		Name:          aggregate.Name(),
		Phone:         aggregate.Phone(),
		Email:         aggregate.Email(),
		VehicleType:   aggregate.Vehicle().Type,
		VehicleNumber: aggregate.Vehicle().Number,
		Available:     aggregate.IsAvailable(),
		UpdatedAt:     aggregate.UpdatedAt(),
	}

	if location, ok := aggregate.Location(); ok {
		lat, lng := location.Lat(), location.Lng()
		dto.LocationLat = &lat
		dto.LocationLng = &lng
	}

	return dto
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.LocationLat != nil && dto.LocationLng != nil {
		loc, err := kernel.NewLocation(*dto.LocationLat, *dto.LocationLng)
		if err != nil {
			return nil, err
		}
		location = &loc
	}

	return driver.RestoreDriver(
		id,
		dto.Name,
		dto.Phone,
		dto.Email,
		driver.Vehicle{Type: dto.VehicleType, Number: dto.VehicleNumber},
		location,
		dto.Available,
		dto.UpdatedAt.UTC(),
	)
}
