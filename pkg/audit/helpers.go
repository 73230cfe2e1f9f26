package audit

import (
	"fmt"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// The helper constructors below produce the user-facing pt-BR log titles
// shown in the history view. Code and identifiers stay in English.

func entry(logType, title, description, actor string, leadID *int) Entry {
	return Entry{
		Type:        logType,
		Title:       title,
		Description: &description,
		UserID:      &actor,
		LeadID:      leadID,
	}
}

// LeadCreated describes a freshly registered lead.
func LeadCreated(actor, leadName string, leadID int) Entry {
	return entry(models.LogTypeLead, "Novo lead criado",
		fmt.Sprintf("Lead %s foi adicionado ao sistema", leadName), actor, &leadID)
}

// LeadUpdated describes an edit to an existing lead.
func LeadUpdated(actor, leadName string, leadID int) Entry {
	return entry(models.LogTypeLead, "Lead atualizado",
		fmt.Sprintf("Lead %s foi editado", leadName), actor, &leadID)
}

// LeadStatusChanged describes a pipeline move. Labels are the pt-BR
// column names, not the raw status values.
func LeadStatusChanged(actor, leadName, oldStatus, newStatus string, leadID int) Entry {
	return entry(models.LogTypeLead, "Status atualizado",
		fmt.Sprintf("Lead %s movido de %s para %s",
			leadName, models.LeadStatusLabel(oldStatus), models.LeadStatusLabel(newStatus)),
		actor, &leadID)
}

// LeadDeleted describes a lead removal.
func LeadDeleted(actor, leadName string, leadID int) Entry {
	return entry(models.LogTypeLead, "Lead excluído",
		fmt.Sprintf("Lead %s foi removido do sistema", leadName), actor, &leadID)
}

// TaskCreated describes a new task.
func TaskCreated(actor, taskTitle string, leadID *int) Entry {
	return entry(models.LogTypeTask, "Nova tarefa criada",
		fmt.Sprintf("Tarefa %q foi adicionada ao sistema", taskTitle), actor, leadID)
}

// TaskUpdated describes an edit to an existing task.
func TaskUpdated(actor, taskTitle string, leadID *int) Entry {
	return entry(models.LogTypeTask, "Tarefa atualizada",
		fmt.Sprintf("Tarefa %q foi editada", taskTitle), actor, leadID)
}

// TaskStatusChanged describes a checkbox toggle on the task list.
func TaskStatusChanged(actor, taskTitle, newStatus string, leadID *int) Entry {
	state := "pendente"
	if newStatus == models.TaskStatusCompleted {
		state = "concluída"
	}
	return entry(models.LogTypeTask, "Tarefa atualizada",
		fmt.Sprintf("Tarefa %q marcada como %s", taskTitle, state), actor, leadID)
}

// TaskDeleted describes a task removal.
func TaskDeleted(actor, taskTitle string, leadID *int) Entry {
	return entry(models.LogTypeTask, "Tarefa excluída",
		fmt.Sprintf("Tarefa %q foi removida do sistema", taskTitle), actor, leadID)
}

// ActivityScheduled describes a new calendar activity.
func ActivityScheduled(actor, activityTitle string, leadName string, leadID *int) Entry {
	description := fmt.Sprintf("%s agendada", activityTitle)
	if leadName != "" {
		description = fmt.Sprintf("%s para %s agendada", activityTitle, leadName)
	}
	return entry(models.LogTypeActivity, "Atividade agendada", description, actor, leadID)
}

// ActivityUpdated describes an edit to a calendar activity.
func ActivityUpdated(actor, activityTitle string, leadID *int) Entry {
	return entry(models.LogTypeActivity, "Atividade atualizada",
		fmt.Sprintf("Atividade %q foi editada", activityTitle), actor, leadID)
}

// ActivityDeleted describes a calendar activity removal.
func ActivityDeleted(actor, activityTitle string, leadID *int) Entry {
	return entry(models.LogTypeActivity, "Atividade excluída",
		fmt.Sprintf("Atividade %q foi removida da agenda", activityTitle), actor, leadID)
}

// NoteAdded describes a sticky note attached to a lead.
func NoteAdded(actor, leadName string, leadID int) Entry {
	return entry(models.LogTypeNote, "Nota adicionada",
		fmt.Sprintf("Nova nota adicionada para %s", leadName), actor, &leadID)
}

// NoteDeleted describes a sticky note removal.
func NoteDeleted(actor, leadName string, leadID int) Entry {
	return entry(models.LogTypeNote, "Nota excluída",
		fmt.Sprintf("Nota removida de %s", leadName), actor, &leadID)
}

// System describes an internal event such as a scheduled job run.
func System(title, description string) Entry {
	desc := description
	return Entry{Type: models.LogTypeSystem, Title: title, Description: &desc}
}
