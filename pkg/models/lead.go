package models

import "time"

// Pipeline stages, in board order. These values are stored verbatim in the
// leads.status column and used as Kanban column keys by the frontend.
const (
	LeadStatusNovo        = "novo"
	LeadStatusContato     = "contato"
	LeadStatusQualificado = "qualificado"
	LeadStatusProposta    = "proposta"
	LeadStatusNegociacao  = "negociacao"
	LeadStatusGanho       = "ganho"
	LeadStatusPerdido     = "perdido"
)

// Lead temperatures
const (
	TemperatureFrio   = "frio"
	TemperatureMorno  = "morno"
	TemperatureQuente = "quente"
)

// LeadStatuses returns all pipeline stages in board order.
func LeadStatuses() []string {
	return []string{
		LeadStatusNovo,
		LeadStatusContato,
		LeadStatusQualificado,
		LeadStatusProposta,
		LeadStatusNegociacao,
		LeadStatusGanho,
		LeadStatusPerdido,
	}
}

// ValidLeadStatus reports whether s is one of the pipeline stages.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNovo, LeadStatusContato, LeadStatusQualificado,
		LeadStatusProposta, LeadStatusNegociacao, LeadStatusGanho, LeadStatusPerdido:
		return true
	}
	return false
}

// LeadStatusLabel returns the human-readable label for a pipeline stage.
func LeadStatusLabel(s string) string {
	labels := map[string]string{
		LeadStatusNovo:        "Novo",
		LeadStatusContato:     "Contato",
		LeadStatusQualificado: "Qualificado",
		LeadStatusProposta:    "Proposta",
		LeadStatusNegociacao:  "Negociação",
		LeadStatusGanho:       "Ganho",
		LeadStatusPerdido:     "Perdido",
	}
	if label, ok := labels[s]; ok {
		return label
	}
	return s
}

// Lead represents a prospective customer moving through the sales pipeline
type Lead struct {
	ID          int        `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Company     *string    `db:"company" json:"company"`
	Email       string     `db:"email" json:"email"`
	Phone       *string    `db:"phone" json:"phone"`
	Position    *string    `db:"position" json:"position"`
	Source      *string    `db:"source" json:"source"`
	Status      string     `db:"status" json:"status"`
	Responsible *string    `db:"responsible" json:"responsible"`
	Score       int        `db:"score" json:"score"`
	Temperature string     `db:"temperature" json:"temperature"`
	Value       float64    `db:"value" json:"value"`
	Notes       *string    `db:"notes" json:"notes"`
	LastContact *time.Time `db:"last_contact" json:"last_contact"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// LeadRequest carries the editable lead fields for create and update.
// Name and email are required on both paths.
type LeadRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Company     *string `json:"company"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Phone       *string `json:"phone"`
	Position    *string `json:"position"`
	Source      *string `json:"source"`
	Status      string  `json:"status" validate:"omitempty,oneof=novo contato qualificado proposta negociacao ganho perdido"`
	Responsible *string `json:"responsible"`
	Score       *int    `json:"score" validate:"omitempty,min=0,max=100"`
	Temperature string  `json:"temperature" validate:"omitempty,oneof=frio morno quente"`
	Value       *float64 `json:"value" validate:"omitempty,min=0"`
	Notes       *string `json:"notes"`
}
