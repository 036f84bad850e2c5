package domain

import "fmt"

type DriverStatus string

const (
	DriverActive  DriverStatus = "Active"
	DriverOffDuty DriverStatus = "Off-duty"
	DriverOnBreak DriverStatus = "On-break"
)

const (
	// PastWeekDays is the number of daily hour entries kept per driver, oldest first.
	// The last entry is yesterday.
	PastWeekDays = 7

	// MaxDailyHours bounds every entry of PastWeekHours.
	MaxDailyHours = 12.0

	// FatigueHoursThreshold: more hours than this yesterday marks a driver fatigued.
	FatigueHoursThreshold = 8.0
)

// Represents a fleet driver as supplied by fleet management.
// Driver records are read-only input to the simulation engine.
// PastWeekHours is a fixed-size array so the seven-entry invariant
// cannot be broken after construction.
type Driver struct {
	ID                  string
	Name                string
	ShiftHours          int
	PastWeekHours       [PastWeekDays]float64
	Status              DriverStatus
	Efficiency          float64
	Deliveries          int
	TotalHoursWorked    float64
	AverageDeliveryTime float64
}

// Build the fixed-size past-week array from a decoded list of daily hours.
func NewPastWeekHours(hours []float64) ([PastWeekDays]float64, error) {
	var out [PastWeekDays]float64
	if len(hours) != PastWeekDays {
		return out, fmt.Errorf("past week hours: want %d values, got %d", PastWeekDays, len(hours))
	}

	for i, h := range hours {
		if h < 0 || h > MaxDailyHours {
			return out, fmt.Errorf("past week hours: value #%d = %v out of range [0, %v]", i+1, h, MaxDailyHours)
		}
		out[i] = h
	}

	return out, nil
}

// IsFatigued reports whether the driver worked more than 8 hours yesterday.
func IsFatigued(d Driver) bool {
	return d.PastWeekHours[PastWeekDays-1] > FatigueHoursThreshold
}

// AverageWeeklyHours is the mean of the seven logged days.
func AverageWeeklyHours(d Driver) float64 {
	total := 0.0
	for _, h := range d.PastWeekHours {
		total += h
	}
	return total / PastWeekDays
}

// IsAvailable reports whether the driver can be assigned to a simulation run.
func IsAvailable(d Driver) bool {
	return d.Status == DriverActive
}

// Return at most limit available drivers, preserving input order.
func SelectAvailableDrivers(drivers []Driver, limit int) []Driver {
	out := make([]Driver, 0, min(len(drivers), max(limit, 0)))
	for _, d := range drivers {
		if len(out) >= limit {
			break
		}
		if IsAvailable(d) {
			out = append(out, d)
		}
	}
	return out
}

func ValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverActive, DriverOffDuty, DriverOnBreak:
		return true
	}
	return false
}
