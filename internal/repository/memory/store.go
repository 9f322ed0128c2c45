// Package memory provides an in-memory repository.Store.
//
// Units of work are serialised behind one mutex and run against a copy of the
// committed state; the copy replaces the committed state only when the unit of
// work succeeds. This gives the same all-or-nothing behaviour as the Postgres
// store, which makes it suitable for development without a database and for
// service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/techsupport-scheduler/internal/domain"
	"github.com/spec-kit/techsupport-scheduler/internal/repository"
	apperrors "github.com/spec-kit/techsupport-scheduler/pkg/util"
)

func errDuplicate(what string) error {
	return apperrors.NewInvalidState(what+" already exists", nil)
}

type state struct {
	technicians  map[string]domain.Technician
	clients      map[string]domain.Client
	tickets      map[string]domain.Ticket
	appointments map[string]domain.Appointment
	history      []domain.TicketHistory
}

func newState() *state {
	return &state{
		technicians:  make(map[string]domain.Technician),
		clients:      make(map[string]domain.Client),
		tickets:      make(map[string]domain.Ticket),
		appointments: make(map[string]domain.Appointment),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, t := range s.technicians {
		out.technicians[id] = copyTechnician(t)
	}
	for id, c := range s.clients {
		out.clients[id] = c
	}
	for id, t := range s.tickets {
		out.tickets[id] = copyTicket(t)
	}
	for id, a := range s.appointments {
		out.appointments[id] = a
	}
	out.history = append([]domain.TicketHistory(nil), s.history...)
	return out
}

// Store is a thread-safe in-memory repository.Store.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	repos := repository.Repositories{
		Technicians:  &technicianRepo{st: working},
		Clients:      &clientRepo{st: working},
		Tickets:      &ticketRepo{st: working},
		Appointments: &appointmentRepo{st: working},
		History:      &historyRepo{st: working},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.state = working
	return nil
}

type technicianRepo struct{ st *state }

func (r *technicianRepo) Create(ctx context.Context, technician *domain.Technician) error {
	if _, exists := r.st.technicians[technician.ID]; exists {
		return errDuplicate("technician id")
	}
	for _, other := range r.st.technicians {
		if strings.EqualFold(other.Email, technician.Email) {
			return errDuplicate("technician email")
		}
	}
	r.st.technicians[technician.ID] = copyTechnician(*technician)
	return nil
}

func (r *technicianRepo) Update(ctx context.Context, technician *domain.Technician) error {
	current, ok := r.st.technicians[technician.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.st.technicians {
		if id != technician.ID && strings.EqualFold(other.Email, technician.Email) {
			return errDuplicate("technician email")
		}
	}
	updated := copyTechnician(*technician)
	// skills are managed through AddSkill/RemoveSkill
	updated.Skills = current.Skills
	r.st.technicians[technician.ID] = updated
	return nil
}

func (r *technicianRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.st.technicians[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.st.technicians, id)
	for apptID, appt := range r.st.appointments {
		if appt.TechnicianID == id {
			delete(r.st.appointments, apptID)
		}
	}
	for ticketID, ticket := range r.st.tickets {
		if ticket.AssignedTechnicianID != nil && *ticket.AssignedTechnicianID == id {
			ticket.AssignedTechnicianID = nil
			r.st.tickets[ticketID] = ticket
		}
	}
	return nil
}

func (r *technicianRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	t, ok := r.st.technicians[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyTechnician(t)
	return &out, nil
}

func (r *technicianRepo) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	for _, t := range r.st.technicians {
		if strings.EqualFold(t.Email, email) {
			out := copyTechnician(t)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *technicianRepo) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	var out []domain.Technician
	for _, t := range r.st.technicians {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.ServiceType != nil && !t.HasSkill(*filter.ServiceType) {
			continue
		}
		out = append(out, copyTechnician(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *technicianRepo) AddSkill(ctx context.Context, skill domain.TechnicianSkill) error {
	t, ok := r.st.technicians[skill.TechnicianID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.HasSkill(skill.ServiceType) {
		return nil
	}
	t.Skills = append(append([]domain.TechnicianSkill(nil), t.Skills...), skill)
	sort.Slice(t.Skills, func(i, j int) bool { return t.Skills[i].ServiceType < t.Skills[j].ServiceType })
	r.st.technicians[t.ID] = t
	return nil
}

func (r *technicianRepo) RemoveSkill(ctx context.Context, technicianID string, serviceType domain.ServiceType) error {
	t, ok := r.st.technicians[technicianID]
	if !ok || !t.HasSkill(serviceType) {
		return repository.ErrNotFound
	}
	kept := make([]domain.TechnicianSkill, 0, len(t.Skills))
	for _, skill := range t.Skills {
		if skill.ServiceType != serviceType {
			kept = append(kept, skill)
		}
	}
	t.Skills = kept
	r.st.technicians[technicianID] = t
	return nil
}

type clientRepo struct{ st *state }

func (r *clientRepo) Create(ctx context.Context, client *domain.Client) error {
	if _, exists := r.st.clients[client.ID]; exists {
		return errDuplicate("client id")
	}
	for _, other := range r.st.clients {
		if strings.EqualFold(other.Email, client.Email) {
			return errDuplicate("client email")
		}
	}
	r.st.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) Update(ctx context.Context, client *domain.Client) error {
	if _, ok := r.st.clients[client.ID]; !ok {
		return repository.ErrNotFound
	}
	r.st.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.st.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.st.clients, id)
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c, ok := r.st.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *clientRepo) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	for _, c := range r.st.clients {
		if strings.EqualFold(c.Email, email) {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type ticketRepo struct{ st *state }

func (r *ticketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if _, exists := r.st.tickets[ticket.ID]; exists {
		return errDuplicate("ticket id")
	}
	r.st.tickets[ticket.ID] = copyTicket(*ticket)
	return nil
}

func (r *ticketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	current, ok := r.st.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := copyTicket(*ticket)
	updated.DueAt = current.DueAt
	updated.CreatedAt = current.CreatedAt
	updated.ServiceType = current.ServiceType
	r.st.tickets[ticket.ID] = updated
	return nil
}

func (r *ticketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.st.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyTicket(t)
	return &out, nil
}

func (r *ticketRepo) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool {
		return t.ClientID != nil && *t.ClientID == clientID
	}, byCreatedAt), nil
}

func (r *ticketRepo) DetachClient(ctx context.Context, clientID string, at time.Time) (int64, error) {
	var n int64
	for id, t := range r.st.tickets {
		if t.ClientID != nil && *t.ClientID == clientID {
			t.ClientID = nil
			t.UpdatedAt = at
			r.st.tickets[id] = t
			n++
		}
	}
	return n, nil
}

func (r *ticketRepo) ListByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool {
		return assignedTo(t, technicianID) && t.Status == status
	}, byDueAt), nil
}

func (r *ticketRepo) CountByAssignedTechnicianAndStatus(ctx context.Context, technicianID string, status domain.TicketStatus) (int, error) {
	count := 0
	for _, t := range r.st.tickets {
		if assignedTo(t, technicianID) && t.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *ticketRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool {
		return t.IsOverdue(now)
	}, byDueAt), nil
}

func (r *ticketRepo) filter(keep func(domain.Ticket) bool, less func(a, b domain.Ticket) bool) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range r.st.tickets {
		if keep(t) {
			out = append(out, copyTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func assignedTo(t domain.Ticket, technicianID string) bool {
	return t.AssignedTechnicianID != nil && *t.AssignedTechnicianID == technicianID
}

func byCreatedAt(a, b domain.Ticket) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func byDueAt(a, b domain.Ticket) bool {
	if a.DueAt.Equal(b.DueAt) {
		return a.ID < b.ID
	}
	return a.DueAt.Before(b.DueAt)
}

type appointmentRepo struct{ st *state }

func (r *appointmentRepo) Create(ctx context.Context, appointment *domain.Appointment) error {
	if _, exists := r.st.appointments[appointment.ID]; exists {
		return errDuplicate("appointment id")
	}
	r.st.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepo) Update(ctx context.Context, appointment *domain.Appointment) error {
	if _, ok := r.st.appointments[appointment.ID]; !ok {
		return repository.ErrNotFound
	}
	r.st.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	a, ok := r.st.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepo) FindConflicting(ctx context.Context, technicianID string, start, end time.Time, excluded []domain.AppointmentStatus) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool {
		return a.TechnicianID == technicianID &&
			domain.Overlaps(a.StartTime, a.EndTime, start, end) &&
			!containsStatus(excluded, a.Status)
	}), nil
}

func (r *appointmentRepo) ListByTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool {
		return a.TechnicianID == technicianID && domain.Overlaps(a.StartTime, a.EndTime, from, to)
	}), nil
}

func (r *appointmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool {
		return a.TicketID == ticketID
	}), nil
}

func (r *appointmentRepo) CountByTechnicianInWindow(ctx context.Context, technicianID string, from, to time.Time, excluded []domain.AppointmentStatus) (int, error) {
	matches, _ := r.FindConflicting(ctx, technicianID, from, to, excluded)
	return len(matches), nil
}

func (r *appointmentRepo) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	var out []domain.Appointment
	for _, a := range r.st.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func containsStatus(statuses []domain.AppointmentStatus, status domain.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type historyRepo struct{ st *state }

func (r *historyRepo) Create(ctx context.Context, history *domain.TicketHistory) error {
	if _, ok := r.st.tickets[history.TicketID]; !ok {
		return repository.ErrNotFound
	}
	r.st.history = append(r.st.history, *history)
	return nil
}

func (r *historyRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, h := range r.st.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

func copyTechnician(t domain.Technician) domain.Technician {
	t.Skills = append([]domain.TechnicianSkill(nil), t.Skills...)
	return t
}

func copyTicket(t domain.Ticket) domain.Ticket {
	if t.ClientID != nil {
		id := *t.ClientID
		t.ClientID = &id
	}
	if t.AssignedTechnicianID != nil {
		id := *t.AssignedTechnicianID
		t.AssignedTechnicianID = &id
	}
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		t.ClosedAt = &at
	}
	return t
}
