// Staff hiring and weekly payroll.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/geofarm/internal/economy"
	"github.com/talgya/geofarm/internal/model"
)

// HireStaff adds m to the player's staff.
func (s *Store) HireStaff(m model.StaffMember) (model.StaffMember, error) {
	if badAmount(m.Salary) {
		return model.StaffMember{}, invalidf("salary %v", m.Salary)
	}
	switch m.Type {
	case model.StaffBroker, model.StaffManager, model.StaffDriver:
	default:
		return model.StaffMember{}, invalidf("staff type %q", m.Type)
	}
	if m.Rarity == "" {
		m.Rarity = model.RarityCommon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = model.NewID("staff")
	}
	for _, existing := range s.player.Staff {
		if existing.ID == m.ID {
			return model.StaffMember{}, fmt.Errorf("staff %s: %w", m.ID, ErrDuplicate)
		}
	}
	if m.HiredDate.IsZero() {
		m.HiredDate = s.now()
	}
	m = m.Clone()
	s.player.Staff = append(s.player.Staff, m)
	slog.Info("staff hired", "id", m.ID, "name", m.Name, "type", m.Type,
		"salary", economy.FormatCurrency(m.Salary))
	return m.Clone(), nil
}

// PaySalaries debits one week's salary for every staff member, one ledger
// entry each. Returns the total paid.
func (s *Store) PaySalaries() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, m := range s.player.Staff {
		if m.Salary <= 0 {
			continue
		}
		s.debit(model.TxSalary, m.Salary, "Salary: "+m.Name, m.ID)
		total += m.Salary
	}
	if total > 0 {
		slog.Info("salaries paid", "staff", len(s.player.Staff), "total", economy.FormatCurrency(total))
	}
	return total
}
