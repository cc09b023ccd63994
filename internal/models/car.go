package models

import "time"

// FuelType is the kind of fuel a car runs on.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

// DefaultFuelType is applied when a new car is added without a fuel type.
const DefaultFuelType = FuelGasoline

// Valid reports whether f is one of the known fuel types.
func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

// Car is a single car record owned by one user.
type Car struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(36);not null"`
	Username  string    `json:"username" gorm:"type:varchar(100)"`
	Model     string    `json:"model" gorm:"type:varchar(255);not null"`
	Year      int       `json:"year"`
	MPG       int       `json:"mpg"`
	FuelType  FuelType  `json:"fuelType" gorm:"type:varchar(16);not null"`
	Features  []string  `json:"features" gorm:"type:text;serializer:json"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CarView is a Car as returned to clients, annotated with its age.
type CarView struct {
	Car
	Age int `json:"age"`
}

// AgeIn returns how many years old the car is in the given calendar year.
func (c Car) AgeIn(year int) int {
	return year - c.Year
}

// CarUpdate carries the fields of a partial car update. Nil fields are left unchanged.
type CarUpdate struct {
	Model    *string
	Year     *int
	MPG      *int
	FuelType *FuelType
	Features []string // nil leaves features unchanged, empty clears them
}

// Apply copies the set fields of upd onto c and stamps UpdatedAt with now.
func (c *Car) Apply(upd CarUpdate, now time.Time) {
	if upd.Model != nil {
		c.Model = *upd.Model
	}
	if upd.Year != nil {
		c.Year = *upd.Year
	}
	if upd.MPG != nil {
		c.MPG = *upd.MPG
	}
	if upd.FuelType != nil {
		c.FuelType = *upd.FuelType
	}
	if upd.Features != nil {
		c.Features = append([]string{}, upd.Features...)
	}
	c.UpdatedAt = now
}
