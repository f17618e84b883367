package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcomes recorded by the scheduling counters, besides the error codes of rejected requests.
const (
	OutcomeOK       = "ok"
	OutcomeRestored = "restored"
)

// Scheduling counts the calendar mutations and how the calendar was reconciled with the store
// afterwards. A nil Scheduling records nothing.
type Scheduling struct {
	moves         *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	deletions     *prometheus.CounterVec
	reloads       *prometheus.CounterVec
}

// NewScheduling creates the scheduling counters on the given registerer.
func NewScheduling(registerer prometheus.Registerer) (*Scheduling, error) {
	moves, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_appointment_moves_total",
		Help: "Appointment moves requested from the calendar, by outcome.",
	}, []string{"direction", "outcome"}))
	if err != nil {
		return nil, err
	}
	statusChanges, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_appointment_status_changes_total",
		Help: "Appointment status changes requested from the calendar, by target status and outcome.",
	}, []string{"status", "outcome"}))
	if err != nil {
		return nil, err
	}
	deletions, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_appointment_deletions_total",
		Help: "Appointment deletions requested from the calendar, by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	reloads, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_calendar_reloads_total",
		Help: "Calendar reloads from the appointment store, by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	return &Scheduling{moves: moves, statusChanges: statusChanges, deletions: deletions, reloads: reloads}, nil
}

func (s *Scheduling) ObserveMove(direction, outcome string) {
	if s == nil {
		return
	}
	s.moves.WithLabelValues(direction, outcome).Inc()
}

func (s *Scheduling) ObserveStatusChange(status, outcome string) {
	if s == nil {
		return
	}
	s.statusChanges.WithLabelValues(status, outcome).Inc()
}

func (s *Scheduling) ObserveDeletion(outcome string) {
	if s == nil {
		return
	}
	s.deletions.WithLabelValues(outcome).Inc()
}

func (s *Scheduling) ObserveReload(outcome string) {
	if s == nil {
		return
	}
	s.reloads.WithLabelValues(outcome).Inc()
}
