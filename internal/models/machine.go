package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// MachineStatus represents the reported state of a vending machine
type MachineStatus string

const (
	MachineStatusOnline      MachineStatus = "online"
	MachineStatusOffline     MachineStatus = "offline"
	MachineStatusMaintenance MachineStatus = "maintenance"
	MachineStatusLowStock    MachineStatus = "low_stock"
	MachineStatusError       MachineStatus = "error"
)

// Location is where a machine is installed
type Location struct {
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// UnmarshalJSON accepts either a location object or a bare location name.
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = Location{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*l = Location{Name: name}
		return nil
	}

	type plain Location
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Location(p)
	return nil
}

// Valid reports whether both coordinates are present
func (l Location) Valid() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Machine is a vending machine in the fleet
type Machine struct {
	ID            string        `json:"_id"`
	MachineID     string        `json:"machineId"`
	Model         string        `json:"model,omitempty"`
	Location      Location      `json:"location"`
	Status        MachineStatus `json:"status"`
	LastHeartbeat *time.Time    `json:"lastHeartbeat,omitempty"`
}

// Key identifies the machine in cached collections
func (m Machine) Key() string {
	return m.ID
}

// NeedsAttention reports whether a technician should look at the machine
func (m Machine) NeedsAttention() bool {
	return m.Status == MachineStatusOffline || m.Status == MachineStatusMaintenance
}

// HasLocation reports whether the machine can be placed on a map
func (m Machine) HasLocation() bool {
	return m.Location.Valid()
}

// MachineRequest is used for machine creation
type MachineRequest struct {
	MachineID string   `json:"machineId"`
	Model     string   `json:"model"`
	Location  Location `json:"location"`
}

// MachinesNeedingAttention filters a fleet down to offline and maintenance machines.
func MachinesNeedingAttention(machines []Machine) []Machine {
	out := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if m.NeedsAttention() {
			out = append(out, m)
		}
	}
	return out
}
