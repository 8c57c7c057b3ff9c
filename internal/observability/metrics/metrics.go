package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters for the booking flow.
type AppointmentMetrics struct {
	createdTotal   prometheus.Counter
	conflictsTotal prometheus.Counter
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Total appointments booked",
		}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "appointments",
			Name:      "conflicts_total",
			Help:      "Total bookings rejected because the doctor's slot was taken",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.conflictsTotal)
	return m
}

func (m *AppointmentMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

func (m *AppointmentMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

// ReminderMetrics exposes counters for reminder generation and dispatch.
type ReminderMetrics struct {
	generatedTotal prometheus.Counter
	sentTotal      prometheus.Counter
	sendFailures   prometheus.Counter
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		generatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "reminders",
			Name:      "generated_total",
			Help:      "Total reminder rows created",
		}),
		sentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Total reminders delivered",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "reminders",
			Name:      "send_failures_total",
			Help:      "Total reminder deliveries that failed and will be retried",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.generatedTotal, m.sentTotal, m.sendFailures)
	return m
}

func (m *ReminderMetrics) ObserveGenerated() {
	if m == nil {
		return
	}
	m.generatedTotal.Inc()
}

func (m *ReminderMetrics) ObserveSent() {
	if m == nil {
		return
	}
	m.sentTotal.Inc()
}

func (m *ReminderMetrics) ObserveSendFailure() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}
