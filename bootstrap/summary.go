package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/harvester/component"
	"github.com/kbukum/harvester/logger"
)

// ComponentLine is one row of the startup summary.
type ComponentLine struct {
	Name    string
	Type    string
	Details string
	Status  component.HealthStatus
	Message string
}

// Summary is the startup display of a command.
type Summary struct {
	Service         string
	Version         string
	StartupDuration time.Duration
	Components      []ComponentLine
}

// Collect builds the summary from the registry in registration order.
// Components that are not Describable are listed by name.
func Collect(ctx context.Context, service, version string, reg *component.Registry, startup time.Duration) *Summary {
	s := &Summary{Service: service, Version: version, StartupDuration: startup}
	if reg == nil {
		return s
	}
	for _, c := range reg.All() {
		line := ComponentLine{Name: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				line.Name = desc.Name
			}
			line.Type, line.Details = desc.Type, desc.Details
		}
		h := c.Health(ctx)
		line.Status, line.Message = h.Status, h.Message
		s.Components = append(s.Components, line)
	}
	return s
}

// Log writes the summary as one structured line per component.
func (s *Summary) Log(log *logger.Logger) {
	log.Info(fmt.Sprintf("%s %s ready", s.Service, s.Version), logger.DurationFields("startup", s.StartupDuration))
	for _, c := range s.Components {
		fields := logger.Fields("name", c.Name, logger.FieldStatus, string(c.Status))
		if c.Type != "" {
			fields["type"] = c.Type
		}
		if c.Details != "" {
			fields["details"] = c.Details
		}
		if c.Message != "" && c.Message != c.Details {
			fields["message"] = c.Message
		}
		if c.Status == component.StatusHealthy {
			log.Debug("component", fields)
		} else {
			log.Warn("component", fields)
		}
	}
}
